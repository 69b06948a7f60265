package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/luminathea/reflex/internal/sanitize"
	"github.com/spf13/cobra"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Extract a reusable pattern from a well-received response",
		Long: `Offer a generated response for extraction. If satisfaction clears the
learning floor and the text is template-shaped, it is stored as a new
pattern (or reinforces a near-duplicate).

Example:
  reflex learn --response "good morning, sam!" --satisfaction 0.9 \
    --intent greeting --emotion joy --time morning --var userName=sam`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rawResponse, _ := cmd.Flags().GetString("response")
			satisfaction, _ := cmd.Flags().GetFloat64("satisfaction")
			response := sanitize.Response(rawResponse)
			if response == "" {
				return fmt.Errorf("--response must not be blank")
			}
			if satisfaction < 0 || satisfaction > 1 {
				return fmt.Errorf("--satisfaction must be between 0 and 1, got %v", satisfaction)
			}
			vars, err := variablesFromFlags(cmd)
			if err != nil {
				return err
			}
			situation := situationFromFlags(cmd)

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			countBefore := eng.PatternCount()
			id, learned := eng.Learn(response, situation, satisfaction, vars)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				result := map[string]interface{}{"learned": learned}
				if learned {
					result["pattern_id"] = id
					result["reinforced"] = eng.PatternCount() == countBefore
				}
				json.NewEncoder(cmd.OutOrStdout()).Encode(result)
				return nil
			}

			switch {
			case !learned:
				fmt.Fprintln(cmd.OutOrStdout(), "Not stored: below the satisfaction floor or not template-shaped.")
			case eng.PatternCount() == countBefore:
				fmt.Fprintf(cmd.OutOrStdout(), "Reinforced existing pattern %d\n", id)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Stored new pattern %d\n", id)
			}
			return nil
		},
	}

	addSituationFlags(cmd)
	cmd.Flags().String("response", "", "Response text to extract from")
	cmd.Flags().Float64("satisfaction", 0.8, "Observed satisfaction for the response (0..1)")
	cmd.MarkFlagRequired("response")

	return cmd
}

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <pattern-id>",
		Short: "Record an explicit outcome for one pattern",
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
			success, _ := cmd.Flags().GetBool("success")
			satisfaction, _ := cmd.Flags().GetFloat64("satisfaction")
			if satisfaction < 0 || satisfaction > 1 {
				return fmt.Errorf("--satisfaction must be between 0 and 1, got %v", satisfaction)
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

			if err := eng.Feedback(id, success, satisfaction); err != nil {
				return err
			}
			pattern, _ := eng.Pattern(id)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"pattern_id":       id,
					"use_count":        pattern.UseCount,
					"success_count":    pattern.SuccessCount,
					"avg_satisfaction": pattern.AvgSatisfaction,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Pattern %d: %d/%d successes, avg satisfaction %.2f\n",
					id, pattern.SuccessCount, pattern.UseCount, pattern.AvgSatisfaction)
			}
			return nil
		},
	}

	cmd.Flags().Bool("success", true, "Whether the pattern-based response succeeded")
	cmd.Flags().Float64("satisfaction", 0.8, "Observed satisfaction (0..1)")

	return cmd
}
