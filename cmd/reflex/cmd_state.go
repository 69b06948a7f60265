package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luminathea/reflex/internal/backup"
	"github.com/luminathea/reflex/internal/engine"
	"github.com/luminathea/reflex/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all state as one JSON document",
		Long: `Write the pattern store and controller state as a single JSON envelope,
suitable for backup or for moving a companion's learned behavior to
another machine. Re-load it with 'reflex import'.`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")

			eng, err := openEngine(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			snap := eng.Snapshot()
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode state: %w", err)
			}
			data = append(data, '\n')

			if output == "" {
				cmd.OutOrStdout().Write(data)
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":   "exported",
					"path":     output,
					"patterns": len(snap.Patterns.Patterns),
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d patterns to %s\n",
					len(snap.Patterns.Patterns), output)
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Write to this file instead of stdout")

	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all state from an exported JSON document",
		Args:  cobra.ExactArgs(1),
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

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var snap engine.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
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

			if !force {
				prompt := fmt.Sprintf("Replace %d existing patterns with %d from %s?",
					eng.PatternCount(), len(snap.Patterns.Patterns), args[0])
				if !confirm(prompt) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			// Safety copy of the state being replaced.
			dataDir, err := store.ResolveDataDir(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to resolve data directory: %w", err)
			}
			backupDir := filepath.Join(dataDir, "backups")
			backupPath, err := backup.Write(backupDir, eng.Snapshot())
			if err != nil {
				return fmt.Errorf("failed to back up current state: %w", err)
			}
			if _, err := backup.Prune(backupDir, backup.DefaultKeep); err != nil {
				return fmt.Errorf("failed to prune old backups: %w", err)
			}

			if err := eng.RestoreSnapshot(ctx, snap); err != nil {
				return fmt.Errorf("failed to import state: %w", err)
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":   "imported",
					"patterns": eng.PatternCount(),
					"level":    eng.Level().String(),
					"backup":   backupPath,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up previous state to %s\n", backupPath)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d patterns, level %s\n",
					eng.PatternCount(), eng.Level())
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Replace without asking")

	return cmd
}
