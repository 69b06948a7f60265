package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/luminathea/reflex/internal/config"
	"github.com/luminathea/reflex/internal/engine"
	"github.com/luminathea/reflex/internal/logging"
	"github.com/luminathea/reflex/internal/models"
	"github.com/luminathea/reflex/internal/store"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflex",
		Short: "Reflex - response pattern learning for simulated companions",
		Long: `reflex manages learned response patterns and graduated autonomy for
simulated-companion hosts.

It stores (situation -> template) associations, scores incoming
situations against them, and governs how much of each response comes
from patterns versus the text generator.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for host consumption)")
	rootCmd.PersistentFlags().String("data", "", "State directory (default ~/.reflex)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newMatchCmd(),
		newLearnCmd(),
		newFeedbackCmd(),
		newListCmd(),
		newShowCmd(),
		newStatsCmd(),
		newCullCmd(),
		newResetCmd(),
		newExportCmd(),
		newImportCmd(),
		newSimulateCmd(),
		newMCPServerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "reflex version %s\n", version)
			}
		},
	}
}

// loadConfig builds the effective configuration: defaults, then the
// config file and environment, then the --data flag on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir, _ := cmd.Flags().GetString("data"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// newLogger builds the operational logger. It writes to stderr so that
// stdout stays reserved for command output.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}

// openEngine opens the configured backend and loads the engine from it.
// Callers own the returned engine and must Close it.
func openEngine(ctx context.Context, cfg *config.Config, log *slog.Logger) (*engine.Engine, error) {
	backend, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	eng, err := engine.Open(ctx, cfg, log, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return eng, nil
}

// addSituationFlags registers the situation and variable flags shared
// by match and learn.
func addSituationFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("intent", nil, "Intent tags (repeatable)")
	cmd.Flags().StringSlice("emotion", nil, "Emotion tags (repeatable)")
	cmd.Flags().StringSlice("depth", nil, "Relationship depth tags (repeatable)")
	cmd.Flags().StringSlice("time", nil, "Time-of-day tags (repeatable)")
	cmd.Flags().StringSlice("phase", nil, "Conversation phase tags (repeatable)")
	cmd.Flags().StringSlice("keyword", nil, "Topic keywords (repeatable)")
	cmd.Flags().StringArray("var", nil, "Substitution variable as name=value (repeatable)")
}

func situationFromFlags(cmd *cobra.Command) models.Situation {
	intents, _ := cmd.Flags().GetStringSlice("intent")
	emotions, _ := cmd.Flags().GetStringSlice("emotion")
	depths, _ := cmd.Flags().GetStringSlice("depth")
	times, _ := cmd.Flags().GetStringSlice("time")
	phases, _ := cmd.Flags().GetStringSlice("phase")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	return models.Situation{
		Intents:    intents,
		Emotions:   emotions,
		Depths:     depths,
		TimesOfDay: times,
		Phases:     phases,
		Keywords:   keywords,
	}
}

func variablesFromFlags(cmd *cobra.Command) (models.Variables, error) {
	pairs, _ := cmd.Flags().GetStringArray("var")
	var vars models.Variables
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return vars, fmt.Errorf("invalid --var %q (want name=value)", pair)
		}
		if !vars.Set(name, value) {
			return vars, fmt.Errorf("unknown variable %q (known: %s)",
				name, strings.Join(models.VarNames, ", "))
		}
	}
	return vars, nil
}

// confirm asks for interactive [y/N] confirmation on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
