package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// ServerName is the key under mcpServers that webeval manages. Only this
// entry is ever touched; everything else in the file is preserved.
const ServerName = "web-eval-agent"

// serverCommand resolves the command the editor should run. The installed
// binary's own path is the most reliable choice; fall back to the bare name
// and let PATH resolve it.
func serverCommand() string {
	if execPath, err := os.Executable(); err == nil {
		return execPath
	}
	return "webeval"
}

// serverEntry builds the managed mcpServers entry.
func serverEntry(apiKey string) map[string]any {
	return map[string]any{
		"command": serverCommand(),
		"args":    []string{"serve"},
		"env": map[string]string{
			"OPERATIVE_API_KEY": apiKey,
		},
	}
}

// readConfig parses an MCP config file as free-form JSON. A missing file
// yields an empty document; malformed JSON is a user error because webeval
// must not guess at repairing someone's editor config.
func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, output.NewSystemErrorWithCause("failed to read editor config", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, output.NewUserError(fmt.Sprintf("existing config at %s is not valid JSON; fix or remove it first", path))
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}

// writeConfig writes the config back with stable indentation. Mode 0600
// because the file carries the API key.
func writeConfig(path string, cfg map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return output.NewSystemErrorWithCause("failed to encode editor config", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return output.NewSystemErrorWithCause("failed to write editor config", err)
	}
	return nil
}

// backupConfig copies the existing file aside before the first modification.
// No-op when the file does not exist yet.
func backupConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", output.NewSystemErrorWithCause("failed to read editor config for backup", err)
	}

	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return "", output.NewSystemErrorWithCause("failed to write config backup", err)
	}
	return backup, nil
}

// IsServerInstalled reports whether the managed entry exists in the config
// file at path.
func IsServerInstalled(path string) bool {
	cfg, err := readConfig(path)
	if err != nil {
		return false
	}
	servers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		return false
	}
	_, installed := servers[ServerName]
	return installed
}

// InstallServerEntry adds or replaces the managed entry in the config file
// at path, preserving all unrelated keys. The previous file content is
// backed up first. Returns the backup path, empty when no file existed.
func InstallServerEntry(path, apiKey string) (string, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return "", err
	}

	backup, err := backupConfig(path)
	if err != nil {
		return "", err
	}

	servers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		servers = map[string]any{}
		cfg["mcpServers"] = servers
	}
	servers[ServerName] = serverEntry(apiKey)

	if err := writeConfig(path, cfg); err != nil {
		return "", err
	}
	return backup, nil
}

// RemoveServerEntry deletes the managed entry from the config file at path,
// leaving everything else intact. Missing file or missing entry is not an
// error; remove is idempotent.
func RemoveServerEntry(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	cfg, err := readConfig(path)
	if err != nil {
		return err
	}

	servers, ok := cfg["mcpServers"].(map[string]any)
	if !ok {
		return nil
	}
	if _, installed := servers[ServerName]; !installed {
		return nil
	}
	delete(servers, ServerName)

	return writeConfig(path, cfg)
}
