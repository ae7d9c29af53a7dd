// Package main provides the entry point for the webeval CLI.
package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newValidateBackend serves api/validate-key with a fixed answer.
func newValidateBackend(t *testing.T, valid bool, reason string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/validate-key" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"valid": valid, "reason": reason})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func readMCPConfig(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return cfg
}

func TestSetupList(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		var buf bytes.Buffer
		cmd := newSetupCmd()
		cmd.PersistentFlags().Bool("json", false, "")
		_ = cmd.PersistentFlags().Set("json", "true")
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--list"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON: %v (output: %s)", err, buf.String())
		}

		integrations, ok := result["integrations"].([]any)
		if !ok {
			t.Fatalf("expected integrations array, got %T", result["integrations"])
		}
		names := map[string]bool{}
		for _, i := range integrations {
			if m, ok := i.(map[string]any); ok {
				names[m["name"].(string)] = true
			}
		}
		for _, want := range []string{"cursor", "windsurf", "claude"} {
			if !names[want] {
				t.Errorf("%s missing from list", want)
			}
		}
	})

	t.Run("human output", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		var buf bytes.Buffer
		cmd := newSetupCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--list"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "cursor") {
			t.Errorf("expected output to contain 'cursor', got: %s", buf.String())
		}
	})
}

func TestSetupCheck(t *testing.T) {
	tests := []struct {
		name       string
		preinstall bool
		wantHuman  string
	}{
		{name: "not installed", preinstall: false, wantHuman: "not installed"},
		{name: "already installed", preinstall: true, wantHuman: "installed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)

			if tc.preinstall {
				configPath := filepath.Join(home, ".cursor", "mcp.json")
				if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
					t.Fatal(err)
				}
				content := `{"mcpServers": {"web-eval-agent": {"command": "webeval", "args": ["serve"]}}}`
				if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var buf bytes.Buffer
			cmd := newSetupCmd()
			cmd.SetOut(&buf)
			cmd.SetArgs([]string{"cursor", "--check"})

			if err := cmd.Execute(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(strings.ToLower(buf.String()), tc.wantHuman) {
				t.Errorf("expected %q in output: %s", tc.wantHuman, buf.String())
			}
		})
	}
}

func TestSetupInstall(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPERATIVE_API_KEY", "op-test-key")

	backend := newValidateBackend(t, true, "")
	t.Setenv("OPERATIVE_BACKEND_URL", backend.URL)

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"cursor"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	configPath := filepath.Join(home, ".cursor", "mcp.json")
	cfg := readMCPConfig(t, configPath)
	servers := cfg["mcpServers"].(map[string]any)
	entry, ok := servers["web-eval-agent"].(map[string]any)
	if !ok {
		t.Fatalf("no web-eval-agent entry: %v", cfg)
	}
	env := entry["env"].(map[string]any)
	if env["OPERATIVE_API_KEY"] != "op-test-key" {
		t.Errorf("env = %v", env)
	}
	if !strings.Contains(buf.String(), "Installed Cursor integration") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSetupInstall_InvalidKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPERATIVE_API_KEY", "op-expired")

	backend := newValidateBackend(t, false, "subscription expired")
	t.Setenv("OPERATIVE_BACKEND_URL", backend.URL)

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"cursor"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid key, got nil")
	}
	if !strings.Contains(err.Error(), "subscription expired") {
		t.Errorf("error = %v", err)
	}
}

func TestSetupInstall_MissingKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPERATIVE_API_KEY", "")

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"cursor"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing key, got nil")
	}
	if !strings.Contains(err.Error(), "OPERATIVE_API_KEY") {
		t.Errorf("error = %v", err)
	}
}

func TestSetupDryRun(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPERATIVE_API_KEY", "op-test-key")

	backend := newValidateBackend(t, true, "")
	t.Setenv("OPERATIVE_BACKEND_URL", backend.URL)

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"cursor", "--dry-run"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	configPath := filepath.Join(home, ".cursor", "mcp.json")
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("dry-run should not create the config file")
	}
	if !strings.Contains(strings.ToLower(buf.String()), "would") {
		t.Errorf("dry-run output should describe intended action, got: %s", buf.String())
	}
}

func TestSetupRemove(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configPath := filepath.Join(home, ".cursor", "mcp.json")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"mcpServers": {"web-eval-agent": {"command": "webeval"}, "other": {"command": "x"}}}`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"cursor", "--remove"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := readMCPConfig(t, configPath)
	servers := cfg["mcpServers"].(map[string]any)
	if _, ok := servers["web-eval-agent"]; ok {
		t.Error("entry still present after remove")
	}
	if _, ok := servers["other"]; !ok {
		t.Error("unrelated entry was lost")
	}
}

func TestSetupRemove_NotInstalled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	cmd := newSetupCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"cursor", "--remove"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(strings.ToLower(buf.String()), "not installed") {
		t.Errorf("expected 'not installed' message, got: %s", buf.String())
	}
}
