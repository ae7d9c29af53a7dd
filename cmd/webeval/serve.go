// Package main provides the entry point for the webeval CLI.
package main

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/operative-sh/web-eval-agent/internal/browser"
	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
	webevalmcp "github.com/operative-sh/web-eval-agent/internal/mcp"
	"github.com/operative-sh/web-eval-agent/internal/operative"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	var openDashboard bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run webeval as a Model Context Protocol (MCP) server over stdio.

This is the command your editor runs; 'webeval setup <editor>' registers it:
  {
    "mcpServers": {
      "web-eval-agent": {
        "command": "webeval",
        "args": ["serve"],
        "env": {"OPERATIVE_API_KEY": "..."}
      }
    }
  }

The Control Center dashboard starts in the background on http://127.0.0.1:5009
and streams agent, console, and network activity while evaluations run.

Available tools: web_eval_agent, setup_browser_state`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, openDashboard)
		},
	}

	cmd.Flags().BoolVar(&openDashboard, "open-dashboard", false, "Open the Control Center in your browser on startup")

	return cmd
}

// runServe wires the backend client, dashboard, and browser capture into an
// MCP server and blocks on stdio until the editor disconnects.
func runServe(cmd *cobra.Command, openDashboard bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol; all logging goes to stderr.
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	// The dashboard is best-effort: an occupied port usually means another
	// webeval instance already serves it, and evaluations work without one.
	var hub *logserver.Hub
	srv := logserver.New(cfg.DashboardAddr, cfg.LogBuffer, logger)
	switch err := srv.Start(); {
	case err == nil:
		hub = srv.Hub()
		defer func() { _ = srv.Shutdown(cmd.Context()) }()
		if openDashboard {
			if err := logserver.Open(srv.URL()); err != nil {
				logger.Warn("opening dashboard", zap.Error(err))
			}
		}
	case errors.Is(err, logserver.ErrAlreadyRunning):
		logger.Info("dashboard port in use, assuming another instance serves it",
			zap.String("addr", cfg.DashboardAddr))
	default:
		logger.Warn("starting dashboard", zap.Error(err))
	}

	mgr := browser.NewManager(cfg.Browser, hub, logger)
	defer func() { _ = mgr.Close() }()

	// Resolve the key per request: an editor may export OPERATIVE_API_KEY
	// into the server's environment after the process is already running.
	backend := operative.NewWithKeyFunc(cfg.BackendURL, config.APIKey)
	server := webevalmcp.NewServer(buildVersion(), webevalmcp.Deps{
		Backend: backend,
		Browser: mgr,
		Hub:     hub,
	})
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

// newLogger builds a zap logger writing to stderr.
func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
