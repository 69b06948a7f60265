package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a situation against the stored patterns",
		Long: `Score the described situation against every stored pattern and print
the top candidates. This is a dry run: no usage counters move and the
recently-used ring is ignored.

Example:
  reflex match --intent greeting --emotion joy --time morning --var userName=sam`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			vars, err := variablesFromFlags(cmd)
			if err != nil {
				return err
			}
			situation := situationFromFlags(cmd)
			if situation.IsEmpty() {
				return fmt.Errorf("describe the situation with at least one of --intent, --emotion, --depth, --time, --phase, --keyword")
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

			candidates := eng.Rank(situation, vars, top)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"matches": candidates,
					"count":   len(candidates),
				})
				return nil
			}

			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patterns match this situation.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d matching patterns:\n\n", len(candidates))
			for i, c := range candidates {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. [%d] final=%.3f match=%.3f (%s, used %dx)\n",
					i+1, c.Pattern.ID, c.FinalScore, c.MatchScore, c.Pattern.Origin, c.Pattern.UseCount)
				if c.Expandable {
					fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", c.Text)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "   %s (missing variables)\n", c.Pattern.Template)
				}
			}
			return nil
		},
	}

	addSituationFlags(cmd)
	cmd.Flags().Int("top", 5, "Maximum number of candidates to show")

	return cmd
}
