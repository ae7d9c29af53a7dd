// Package setup installs the webeval MCP server into coding-agent editors
// by patching their MCP configuration files.
package setup

import "slices"

// AgentEnv describes an agent coding environment that webeval can integrate
// with. Each implementation handles detection, installation, and removal of
// the MCP server entry for a specific editor (Cursor, Windsurf, Claude Code).
type AgentEnv interface {
	// Name returns the short identifier used in CLI commands (e.g., "cursor").
	Name() string

	// DisplayName returns the human-readable name (e.g., "Cursor").
	DisplayName() string

	// Detect checks whether this editor's integration is installed.
	// Returns the config path, scope ("project"/"global"), and whether installed.
	Detect() (path, scope string, installed bool)

	// Install adds the webeval server entry to this editor's MCP config.
	// If project is true, installs to project-local config; otherwise global.
	// The API key is embedded in the entry's env block.
	Install(project bool, apiKey string) (path string, err error)

	// Remove deletes the webeval server entry from this editor's MCP config.
	Remove(project bool) error

	// Check returns the config path and scope for the given scope without
	// modifying anything.
	Check(project bool) (path, scope string, installed bool, err error)
}

// registry holds all known agent environments, keyed by name.
var registry = map[string]AgentEnv{}

// RegisterAgentEnv registers an agent environment implementation.
func RegisterAgentEnv(env AgentEnv) {
	registry[env.Name()] = env
}

// GetAgentEnv returns a registered agent environment by name, or nil if not found.
func GetAgentEnv(name string) AgentEnv {
	return registry[name]
}

// AllAgentEnvs returns all registered agent environments in a stable order.
func AllAgentEnvs() []AgentEnv {
	order := []string{"cursor", "windsurf", "claude"}
	var result []AgentEnv
	for _, name := range order {
		if env, ok := registry[name]; ok {
			result = append(result, env)
		}
	}
	// Append any environments not in the explicit order (future additions).
	for name, env := range registry {
		if !slices.Contains(order, name) {
			result = append(result, env)
		}
	}
	return result
}

// DetectedAgentEnvs returns agent environments that have webeval installed.
func DetectedAgentEnvs() []AgentEnv {
	var detected []AgentEnv
	for _, env := range AllAgentEnvs() {
		if _, _, installed := env.Detect(); installed {
			detected = append(detected, env)
		}
	}
	return detected
}
