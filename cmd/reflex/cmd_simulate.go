package main

import (
	"encoding/json"
	"fmt"

	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/simulation"
	"github.com/spf13/cobra"
)

// strategyOrder fixes the display order for the strategy mix.
var strategyOrder = []models.StrategyKind{
	models.StrategyGeneratorOnly,
	models.StrategyGeneratorWithHint,
	models.StrategyPatternDraft,
	models.StrategyPatternWithAudit,
	models.StrategyPurePattern,
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted synthetic session against an in-memory engine",
		Long: `Drive a fresh in-memory engine through a scripted daily routine and
report how the autonomy level moved. Nothing touches the data
directory; this is for exploring how the trust ladder responds to a
given quality level.

Example:
  reflex simulate --turns 200 --quality 0.85`,
		RunE: func(cmd *cobra.Command, args []string) error {
			turns, _ := cmd.Flags().GetInt("turns")
			quality, _ := cmd.Flags().GetFloat64("quality")
			seedStore, _ := cmd.Flags().GetBool("seed")
			randSeed, _ := cmd.Flags().GetInt64("rand-seed")

			if turns <= 0 {
				return fmt.Errorf("--turns must be positive, got %d", turns)
			}
			if quality < 0 || quality > 1 {
				return fmt.Errorf("--quality must be between 0 and 1, got %v", quality)
			}

			result, err := simulation.Run(simulation.Scenario{
				Name:     "cli",
				Seed:     seedStore,
				RandSeed: randSeed,
				Turns:    simulation.DailyRoutine(turns, quality),
			})
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			strategies := make(map[models.StrategyKind]int)
			for _, tr := range result.Turns {
				strategies[tr.Strategy.Kind]++
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"turns":       len(result.Turns),
					"final_level": result.FinalLevel.String(),
					"patterns":    result.PatternCount,
					"changes":     result.Changes,
					"audits":      len(result.Audits),
					"strategies":  strategies,
					"metrics":     result.Metrics,
				})
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Simulated %d turns at quality %.2f", len(result.Turns), quality)
			if seedStore {
				fmt.Fprint(out, " (seeded store)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Final level:   %s\n", result.FinalLevel)
			fmt.Fprintf(out, "Patterns:      %d\n", result.PatternCount)
			fmt.Fprintf(out, "Audits:        %d\n", len(result.Audits))
			fmt.Fprintf(out, "Level changes: %d\n", len(result.Changes))
			for _, change := range result.Changes {
				fmt.Fprintf(out, "  tick %d: %s -> %s (%s)\n",
					change.Tick, change.From, change.To, change.Reason)
			}
			fmt.Fprintln(out, "Strategies:")
			for _, kind := range strategyOrder {
				if n := strategies[kind]; n > 0 {
					fmt.Fprintf(out, "  %-20s %d\n", kind, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("turns", 200, "Number of scripted turns to run")
	cmd.Flags().Float64("quality", 0.85, "Reported quality for every turn (0..1)")
	cmd.Flags().Bool("seed", true, "Start from the seed catalog")
	cmd.Flags().Int64("rand-seed", 42, "Random seed for pattern draws")

	return cmd
}
