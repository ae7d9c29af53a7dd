// Package main provides the entry point for the webeval CLI.
package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/output"
)

// newDashboardCmd creates the dashboard command for running the Control
// Center standalone.
func newDashboardCmd() *cobra.Command {
	var openBrowser bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the Control Center dashboard standalone",
		Long: `Run the Control Center log dashboard without the MCP server.

Useful for keeping the Control Center open while 'webeval serve' runs inside
your editor: evaluations stream agent, console, and network activity here.

Examples:
  webeval dashboard          # Serve on the configured address
  webeval dashboard --open   # Also open it in your browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, openBrowser)
		},
	}

	cmd.Flags().BoolVar(&openBrowser, "open", false, "Open the dashboard in your browser")

	return cmd
}

// runDashboard serves the dashboard until interrupted.
func runDashboard(cmd *cobra.Command, openBrowser bool) error {
	printer := newPrinter(cmd)

	cfg, err := config.Load()
	if err != nil {
		printer.Error(err)
		return err
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	srv := logserver.New(cfg.DashboardAddr, cfg.LogBuffer, logger)
	if err := srv.Start(); err != nil {
		if errors.Is(err, logserver.ErrAlreadyRunning) {
			userErr := output.NewConflictError("dashboard already running at " + srv.URL())
			printer.Error(userErr)
			return userErr
		}
		printer.Error(err)
		return err
	}

	if openBrowser {
		if err := logserver.Open(srv.URL()); err != nil {
			printer.Warn("could not open browser: %v", err)
		}
	}

	printer.Stderr("Control Center serving at %s (Ctrl+C to stop)\n", srv.URL())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return srv.Shutdown(cmd.Context())
}
