// Package main provides the entry point for the webeval CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func installCursorEntry(t *testing.T, home string) string {
	t.Helper()
	configPath := filepath.Join(home, ".cursor", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"mcpServers": {"web-eval-agent": {"command": "webeval", "args": ["serve"]}}}`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func TestUninstall_NothingInstalled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	cmd := newUninstallCmd()
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.ToLower(buf.String()), "nothing to remove") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestUninstall_RemovesIntegrations(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	configPath := installCursorEntry(t, home)

	var buf bytes.Buffer
	cmd := newUninstallCmd()
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := readMCPConfig(t, configPath)
	servers := cfg["mcpServers"].(map[string]any)
	if _, ok := servers["web-eval-agent"]; ok {
		t.Error("entry still present after uninstall")
	}
	if !strings.Contains(buf.String(), "Removed cursor integration") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestUninstall_ConfigFlag(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	configDir := t.TempDir()
	t.Setenv("OPERATIVE_CONFIG_HOME", configDir)
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("log_buffer: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cmd := newUninstallCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--config"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(configDir); !os.IsNotExist(err) {
		t.Error("config dir still exists")
	}
}

func TestUninstall_DryRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	configPath := installCursorEntry(t, home)

	var buf bytes.Buffer
	cmd := newUninstallCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--dry-run"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Entry must survive a dry run.
	cfg := readMCPConfig(t, configPath)
	servers := cfg["mcpServers"].(map[string]any)
	if _, ok := servers["web-eval-agent"]; !ok {
		t.Error("dry run removed the entry")
	}
	if !strings.Contains(strings.ToLower(buf.String()), "would remove") {
		t.Errorf("output = %s", buf.String())
	}
}
