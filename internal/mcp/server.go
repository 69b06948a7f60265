// Package mcp exposes the reflex engine over the Model Context Protocol
// so agent hosts can drive the decide/report loop through tool calls.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/luminathea/reflex/internal/engine"
	"github.com/luminathea/reflex/internal/ratelimit"
)

// Server wraps the MCP SDK server around an open engine.
type Server struct {
	server   *sdk.Server
	engine   *engine.Engine
	limiters ratelimit.ToolLimiters
	logger   *slog.Logger
}

// Config holds server configuration. Engine is required and remains
// owned by the caller: the server never saves or closes it.
type Config struct {
	Name    string
	Version string
	Engine  *engine.Engine
	Logger  *slog.Logger // nil discards
}

// NewServer creates an MCP server exposing the reflex tools and the
// metrics resource.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("mcp server requires an open engine")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server:   mcpServer,
		engine:   cfg.Engine,
		limiters: ratelimit.NewToolLimiters(),
		logger:   logger,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until the client disconnects, the context is
// cancelled, or an interrupt signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	s.logger.Info("mcp server listening", "transport", "stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// logTool records one tool invocation. Failed calls log at warn so a
// misbehaving host shows up without debug logging turned on.
func (s *Server) logTool(name string, start time.Time, err error) {
	if err != nil {
		s.logger.Warn("tool call failed",
			"tool", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return
	}
	s.logger.Debug("tool call",
		"tool", name,
		"duration_ms", time.Since(start).Milliseconds())
}
