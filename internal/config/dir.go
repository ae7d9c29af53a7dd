// Package config provides the global configuration for webeval.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the webeval configuration directory.
//
// Resolution:
//   - $OPERATIVE_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/webeval if set (respects XDG on any platform)
//   - %AppData%/webeval on Windows
//   - ~/.config/webeval on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("OPERATIVE_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "webeval")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "webeval")
		}
	}

	// macOS and Linux: ~/.config/webeval
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "webeval")
}
