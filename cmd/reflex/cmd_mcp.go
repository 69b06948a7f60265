package main

import (
	"fmt"

	"github.com/luminathea/reflex/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the engine over the Model Context Protocol on stdio",
		Long: `Start an MCP server on stdio exposing the decide/report/learn loop as
tools, plus a reflex://metrics resource. This is how agent hosts embed
reflex.

Register with a host like:
  claude mcp add reflex -- reflex mcp`,
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			eng, err := openEngine(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := eng.Close(ctx); err != nil && retErr == nil {
					retErr = err
				}
			}()

			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "reflex",
				Version: version,
				Engine:  eng,
				Logger:  log,
			})
			if err != nil {
				return fmt.Errorf("failed to create mcp server: %w", err)
			}
			return srv.Run(ctx)
		},
	}
}
