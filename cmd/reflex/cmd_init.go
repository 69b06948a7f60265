package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luminathea/reflex/internal/store"
	"github.com/spf13/cobra"
)

const configTemplate = `# Reflex configuration
# backend: file | sqlite | memory
backend: %s

logging:
  # trace | debug | info | warn | error
  level: %s
  # Write a JSONL decision trace to decisions.jsonl under the data dir
  decision_log: %t

store:
  capacity: %d
  seed_on_empty: %t

autonomy:
  audit_interval: %d
  evaluate_every: %d
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the data directory with defaults and seed patterns",
		Long: `Create the reflex data directory, write a commented default config
file, and install the seed pattern catalog so the store starts with
baseline coverage. Safe to re-run: existing config and patterns are
kept.`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dataDir, err := store.ResolveDataDir(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			configPath := filepath.Join(dataDir, "config.yaml")
			wroteConfig := false
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				content := fmt.Sprintf(configTemplate,
					cfg.Backend,
					cfg.Logging.Level,
					cfg.Logging.DecisionLog,
					cfg.Store.Capacity,
					cfg.Store.SeedOnEmpty,
					cfg.Autonomy.AuditInterval,
					cfg.Autonomy.EvaluateEvery)
				if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to create config.yaml: %w", err)
				}
				wroteConfig = true
			}

			// Opening the engine seeds an empty store and writes the
			// state files on close.
			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()
			patternCount := eng.PatternCount()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":       "initialized",
					"path":         dataDir,
					"config":       configPath,
					"wrote_config": wroteConfig,
					"patterns":     patternCount,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized reflex data directory at %s\n", dataDir)
				if wroteConfig {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", configPath)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Store holds %d patterns\n", patternCount)
			}
			return nil
		},
	}
}
