package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/luminathea/reflex/internal/models"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored patterns",
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			origin, _ := cmd.Flags().GetString("origin")
			if origin != "" && origin != string(models.OriginSeed) && origin != string(models.OriginLearned) {
				return fmt.Errorf("invalid origin %q (valid: seed, learned)", origin)
			}
			top, _ := cmd.Flags().GetInt("top")

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			patterns := eng.Patterns()
			if origin != "" {
				filtered := patterns[:0]
				for _, p := range patterns {
					if string(p.Origin) == origin {
						filtered = append(filtered, p)
					}
				}
				patterns = filtered
			}
			if top > 0 && len(patterns) > top {
				sort.SliceStable(patterns, func(i, j int) bool {
					return patterns[i].UseCount > patterns[j].UseCount
				})
				patterns = patterns[:top]
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"patterns": patterns,
					"count":    len(patterns),
				})
				return nil
			}

			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patterns stored. Run 'reflex init' to install the seed catalog.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d patterns:\n\n", len(patterns))
			fmt.Fprintf(cmd.OutOrStdout(), "%5s  %-7s  %5s  %5s  %5s  %s\n",
				"ID", "ORIGIN", "USES", "OK", "SAT", "TEMPLATE")
			for _, p := range patterns {
				fmt.Fprintf(cmd.OutOrStdout(), "%5d  %-7s  %5d  %5d  %5.2f  %s\n",
					p.ID, p.Origin, p.UseCount, p.SuccessCount, p.AvgSatisfaction, truncate(p.Template, 60))
			}
			return nil
		},
	}

	cmd.Flags().String("origin", "", "Filter by origin: seed or learned")
	cmd.Flags().Int("top", 0, "Show only the N most used patterns")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pattern-id>",
		Short: "Show one pattern in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pattern id %q", args[0])
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

			pattern, ok := eng.Pattern(id)
			if !ok {
				return fmt.Errorf("no pattern with id %d", id)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(pattern)
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pattern %d (%s)\n", pattern.ID, pattern.Origin)
			fmt.Fprintf(out, "  Template:     %s\n", pattern.Template)
			printDimension(out, "Intents", pattern.Situation.Intents)
			printDimension(out, "Emotions", pattern.Situation.Emotions)
			printDimension(out, "Depths", pattern.Situation.Depths)
			printDimension(out, "Times", pattern.Situation.TimesOfDay)
			printDimension(out, "Phases", pattern.Situation.Phases)
			printDimension(out, "Keywords", pattern.Situation.Keywords)
			fmt.Fprintf(out, "  Uses:         %d (%d successes)\n", pattern.UseCount, pattern.SuccessCount)
			fmt.Fprintf(out, "  Satisfaction: %.2f\n", pattern.AvgSatisfaction)
			if pattern.LastUsed > 0 {
				fmt.Fprintf(out, "  Last used:    tick %d\n", pattern.LastUsed)
			}
			if len(pattern.EmotionTags) > 0 {
				fmt.Fprintf(out, "  Emotion tags: %s\n", strings.Join(pattern.EmotionTags, ", "))
			}
			return nil
		},
	}
}

func printDimension(out io.Writer, name string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(out, "  %-13s %s\n", name+":", strings.Join(values, ", "))
}

// truncate shortens s to at most n runes for table display.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
