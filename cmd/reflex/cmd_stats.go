package main

import (
	"encoding/json"
	"fmt"

	"github.com/luminathea/reflex/internal/models"
	"github.com/spf13/cobra"
)

// recentAudits is how many audit records stats shows in text mode.
const recentAudits = 5

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show autonomy level, quality metrics, and store coverage",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			metrics := eng.Metrics()
			tick := eng.Tick()
			patterns := eng.Patterns()
			audits := eng.Audits()

			learned := 0
			for _, p := range patterns {
				if p.Origin == models.OriginLearned {
					learned++
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"metrics":  metrics,
					"tick":     tick,
					"patterns": len(patterns),
					"learned":  learned,
					"audits":   audits,
				})
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Level:            %s\n", metrics.Level)
			fmt.Fprintf(out, "Tick:             %d\n", tick)
			fmt.Fprintf(out, "Patterns:         %d (%d learned)\n", len(patterns), learned)
			fmt.Fprintf(out, "Coverage:         %.2f\n", metrics.Coverage)
			fmt.Fprintf(out, "Confidence:       %.2f\n", metrics.Confidence)
			fmt.Fprintf(out, "Average quality:  %.2f\n", metrics.AvgQuality)
			fmt.Fprintf(out, "Generator calls:  %d\n", metrics.GeneratorCalls)
			fmt.Fprintf(out, "Pattern calls:    %d\n", metrics.PatternCalls)
			fmt.Fprintf(out, "Bypasses:         %d\n", metrics.BypassCount)

			if len(audits) > 0 {
				start := len(audits) - recentAudits
				if start < 0 {
					start = 0
				}
				fmt.Fprintf(out, "\nRecent audits (%d total):\n", len(audits))
				for _, rec := range audits[start:] {
					fmt.Fprintf(out, "  tick %d: avg quality %.2f at %s\n",
						rec.Tick, rec.AvgQuality, rec.Level)
				}
			}
			return nil
		},
	}
}

func newCullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cull",
		Short: "Remove learned patterns that keep performing badly",
		Long: `Remove learned patterns whose satisfaction or success rate stays below
the quality floor after a fair number of uses. Seed patterns and
patterns with too few uses to judge are never removed.`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			removed := eng.Cull()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"removed":   removed,
					"remaining": eng.PatternCount(),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d low-quality patterns (%d remain)\n",
					removed, eng.PatternCount())
			}
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop the autonomy level back to the full-generator floor",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			force, _ := cmd.Flags().GetBool("force")
			jsonOut, _ := cmd.Flags().GetBool("json")
			// Scripted callers can't answer a prompt.
			if jsonOut {
				force = true
			}

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			from := eng.Level()
			if !force && !confirm(fmt.Sprintf("Reset autonomy from %s to %s?", from, models.LevelFullGenerator)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			eng.Reset()

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "reset",
					"from":   from.String(),
					"level":  models.LevelFullGenerator.String(),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Autonomy reset: %s -> %s\n", from, models.LevelFullGenerator)
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Reset without asking")

	return cmd
}
