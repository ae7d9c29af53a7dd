// Package main provides the entry point for the webeval CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/setup"
)

// uninstallFlags holds the command-line flags for the uninstall command.
type uninstallFlags struct {
	removeConfig bool
	dryRun       bool
}

// newUninstallCmd creates the uninstall command.
func newUninstallCmd() *cobra.Command {
	flags := &uninstallFlags{}

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove webeval from all editors",
		Long: `Remove the webeval MCP server entry from every editor where it is
installed. Editor config files keep all their other content.

With --config, also deletes the webeval config directory, including the
saved browser profile (login state).

Examples:
  webeval uninstall            # Remove editor integrations
  webeval uninstall --config   # Also delete ~/.config/webeval
  webeval uninstall --dry-run  # Show what would be removed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.removeConfig, "config", false, "Also delete the config directory and browser profile")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be removed without doing it")

	return cmd
}

// runUninstall executes the uninstall command.
func runUninstall(cmd *cobra.Command, flags *uninstallFlags) error {
	printer := newPrinter(cmd)

	detected := setup.DetectedAgentEnvs()
	configDir := config.Dir()

	if flags.dryRun {
		var targets []string
		for _, env := range detected {
			path, scope, _ := env.Detect()
			targets = append(targets, fmt.Sprintf("%s (%s, %s)", env.DisplayName(), scope, path))
		}
		if flags.removeConfig {
			targets = append(targets, "config directory "+configDir)
		}
		if len(targets) == 0 {
			return printer.Success(map[string]any{"message": "nothing to remove"})
		}
		return printer.Success(map[string]any{
			"message": "would remove: " + strings.Join(targets, "; "),
			"dry_run": true,
		})
	}

	removed, err := setup.RemoveAllIntegrations()
	if err != nil {
		printer.Error(err)
		return err
	}

	configRemoved := false
	if flags.removeConfig && configDir != "" {
		if err := setup.RemoveConfigDir(configDir); err != nil {
			printer.Error(err)
			return err
		}
		configRemoved = true
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"removed":        removed,
			"config_removed": configRemoved,
		})
	}

	if len(removed) == 0 && !configRemoved {
		printer.Println("Nothing to remove; no editor integrations found.")
		return nil
	}
	for _, r := range removed {
		printer.Println(fmt.Sprintf("Removed %s integration (%s, %s)", r.Name, r.Scope, r.Path))
	}
	if configRemoved {
		printer.Println("Removed config directory " + configDir)
	}
	return nil
}
