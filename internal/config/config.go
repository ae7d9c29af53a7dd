package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for unset config values.
const (
	DefaultBackendURL    = "https://operative.sh"
	DefaultDashboardAddr = "127.0.0.1:5009"
	DefaultLogBuffer     = 1000
)

// Browser holds local browser-capture settings.
type Browser struct {
	Headless            bool `yaml:"headless"`
	ViewportWidth       int  `yaml:"viewport_width"`
	ViewportHeight      int  `yaml:"viewport_height"`
	NavigationTimeoutMs int  `yaml:"navigation_timeout_ms"`
}

// NavigationTimeout returns the navigation timeout, defaulting to 30s.
func (b Browser) NavigationTimeout() time.Duration {
	if b.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.NavigationTimeoutMs) * time.Millisecond
}

// Config is the on-disk webeval configuration.
// All fields are optional; zero values fall back to defaults.
type Config struct {
	BackendURL    string  `yaml:"backend_url"`
	DashboardAddr string  `yaml:"dashboard_addr"`
	LogBuffer     int     `yaml:"log_buffer"`
	Browser       Browser `yaml:"browser"`
}

// Load reads config.yaml from the config directory and applies defaults
// and environment overrides. A missing file yields the default config.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.yaml"))
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults apply.
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.DashboardAddr == "" {
		c.DashboardAddr = DefaultDashboardAddr
	}
	if c.LogBuffer <= 0 {
		c.LogBuffer = DefaultLogBuffer
	}
	if c.Browser.ViewportWidth <= 0 {
		c.Browser.ViewportWidth = 1280
	}
	if c.Browser.ViewportHeight <= 0 {
		c.Browser.ViewportHeight = 800
	}
}

// applyEnv lets environment variables override file values.
func (c *Config) applyEnv() {
	if url := os.Getenv("OPERATIVE_BACKEND_URL"); url != "" {
		c.BackendURL = url
	}
}

// APIKey returns the operative.sh subscription key from the environment.
// Empty means the user has not completed setup.
func APIKey() string {
	return os.Getenv("OPERATIVE_API_KEY")
}
