// Package main provides the entry point for the webeval CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/operative"
	"github.com/operative-sh/web-eval-agent/internal/output"
	"github.com/operative-sh/web-eval-agent/internal/setup"
)

// integrationInfo describes an available editor integration.
type integrationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
	Scope       string `json:"scope,omitempty"`
	Location    string `json:"location,omitempty"`
}

// setupFlags holds the command-line flags shared by editor subcommands.
type setupFlags struct {
	project bool
	check   bool
	remove  bool
	dryRun  bool
}

// newSetupCmd creates the setup parent command with one subcommand per editor.
func newSetupCmd() *cobra.Command {
	var listFlag bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server in your editor",
		Long: `Register the webeval MCP server in a coding-agent editor.

Validates your OPERATIVE_API_KEY against the backend, then patches the
editor's MCP config to run 'webeval serve'. Everything else in the config
file is preserved; the previous content is backed up first.

Subcommands:
  cursor     Cursor (~/.cursor/mcp.json)
  windsurf   Windsurf (~/.codeium/windsurf/mcp_config.json)
  claude     Claude Code (~/.claude.json)

Examples:
  webeval setup --list             # List editors and their status
  webeval setup cursor             # Install for Cursor globally
  webeval setup cursor --project   # Install for the current project only
  webeval setup cursor --check     # Check installation status
  webeval setup cursor --remove    # Remove the integration`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listFlag {
				return runSetupList(cmd)
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List available editors and their status")

	for _, env := range setup.AllAgentEnvs() {
		cmd.AddCommand(newSetupEditorCmd(env))
	}
	return cmd
}

// newSetupEditorCmd creates the subcommand for one editor.
func newSetupEditorCmd(env setup.AgentEnv) *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   env.Name(),
		Short: fmt.Sprintf("Install %s integration", env.DisplayName()),
		Long: fmt.Sprintf(`Install the webeval MCP server into %s.

Requires OPERATIVE_API_KEY in the environment or an .env file; the key is
validated against the backend before any file is touched, then embedded in
the server entry so the editor passes it to 'webeval serve'.

Examples:
  webeval setup %[2]s           # Install globally
  webeval setup %[2]s --check   # Check if installed
  webeval setup %[2]s --remove  # Uninstall
  webeval setup %[2]s --dry-run # Show what would be done`, env.DisplayName(), env.Name()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetupEditor(cmd, env, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.project, "project", false, "Install for this project only")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Check installation status without changes")
	cmd.Flags().BoolVar(&flags.remove, "remove", false, "Remove the integration")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would be done without doing it")

	return cmd
}

// runSetupEditor executes an editor subcommand.
func runSetupEditor(cmd *cobra.Command, env setup.AgentEnv, flags *setupFlags) error {
	printer := newPrinter(cmd)

	if flags.check {
		return runSetupCheck(printer, env, flags.project)
	}
	if flags.remove {
		return runSetupRemove(printer, env, flags.project, flags.dryRun)
	}
	return runSetupInstall(cmd, printer, env, flags.project, flags.dryRun)
}

// runSetupCheck reports installation status for one scope.
func runSetupCheck(printer *output.Printer, env setup.AgentEnv, project bool) error {
	path, scope, installed, err := env.Check(project)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"editor":    env.Name(),
			"installed": installed,
			"scope":     scope,
			"path":      path,
		})
	}

	status := "not installed"
	if installed {
		status = "installed"
	}
	printer.KeyValue("Editor", env.DisplayName())
	printer.KeyValue("Status", status)
	printer.KeyValue("Scope", scope)
	printer.KeyValue("Config", path)
	return nil
}

// runSetupRemove removes the integration at one scope.
func runSetupRemove(printer *output.Printer, env setup.AgentEnv, project, dryRun bool) error {
	path, scope, installed, err := env.Check(project)
	if err != nil {
		printer.Error(err)
		return err
	}

	if !installed {
		return printer.Success(map[string]any{
			"message": fmt.Sprintf("%s integration not installed (%s scope), nothing to remove", env.DisplayName(), scope),
		})
	}

	if dryRun {
		return printer.Success(map[string]any{
			"message": fmt.Sprintf("would remove the %s entry from %s", setup.ServerName, path),
			"dry_run": true,
		})
	}

	if err := env.Remove(project); err != nil {
		printer.Error(err)
		return err
	}
	return printer.Success(map[string]any{
		"message": fmt.Sprintf("Removed %s integration (%s)", env.DisplayName(), path),
	})
}

// runSetupInstall validates the API key and patches the editor config.
func runSetupInstall(cmd *cobra.Command, printer *output.Printer, env setup.AgentEnv, project, dryRun bool) error {
	apiKey := config.APIKey()
	if apiKey == "" {
		err := output.NewUserError(
			"OPERATIVE_API_KEY is not set. Get a key at https://operative.sh and export it " +
				"or put it in .env",
		)
		printer.Error(err)
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		printer.Error(err)
		return err
	}

	client := operative.New(cfg.BackendURL, apiKey)
	status, err := client.ValidateKey(cmd.Context())
	if err != nil {
		printer.Error(err)
		return err
	}
	if !status.Valid {
		reason := status.Reason
		if reason == "" {
			reason = "key rejected by backend"
		}
		userErr := output.NewUserError("invalid OPERATIVE_API_KEY: " + reason)
		printer.Error(userErr)
		return userErr
	}

	if dryRun {
		path, scope, _, checkErr := env.Check(project)
		if checkErr != nil {
			printer.Error(checkErr)
			return checkErr
		}
		return printer.Success(map[string]any{
			"message": fmt.Sprintf("would add the %s entry to %s (%s scope)", setup.ServerName, path, scope),
			"dry_run": true,
		})
	}

	path, err := env.Install(project, apiKey)
	if err != nil {
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"editor":    env.Name(),
			"installed": true,
			"path":      path,
		})
	}
	printer.Println(fmt.Sprintf("Installed %s integration.", env.DisplayName()))
	printer.KeyValue("Config", path)
	printer.Println()
	printer.Println(fmt.Sprintf("Restart %s to pick up the new MCP server, then ask your agent to", env.DisplayName()))
	printer.Println("evaluate your app with the web_eval_agent tool.")
	return nil
}

// runSetupList lists available editors and their status.
func runSetupList(cmd *cobra.Command) error {
	printer := newPrinter(cmd)

	var integrations []integrationInfo
	for _, env := range setup.AllAgentEnvs() {
		path, scope, installed := env.Detect()
		integrations = append(integrations, integrationInfo{
			Name:        env.Name(),
			Description: env.DisplayName() + " MCP server entry",
			Installed:   installed,
			Scope:       scope,
			Location:    path,
		})
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"integrations": integrations,
		})
	}

	printer.Section("Available Editors")
	headers := []string{"Name", "Description", "Status", "Scope"}
	rows := make([][]string, 0, len(integrations))
	for _, integ := range integrations {
		status := "not installed"
		if integ.Installed {
			status = "installed"
		}
		scope := "-"
		if integ.Scope != "" {
			scope = integ.Scope
		}
		rows = append(rows, []string{integ.Name, integ.Description, status, scope})
	}
	printer.Table(headers, rows)
	return nil
}
