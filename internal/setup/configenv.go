package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// configEnv implements AgentEnv for editors whose integration is a single
// JSON config file. Editors differ only in where that file lives and
// whether a project-local variant exists.
type configEnv struct {
	name        string
	displayName string
	globalPath  func() (string, error)
	projectPath func() (string, error) // nil when the editor has no project scope
}

// Name returns the CLI identifier.
func (e *configEnv) Name() string { return e.name }

// DisplayName returns the human-readable name.
func (e *configEnv) DisplayName() string { return e.displayName }

// resolve returns the config path and scope label for the requested scope.
func (e *configEnv) resolve(project bool) (string, string, error) {
	if project {
		if e.projectPath == nil {
			return "", "", output.NewUserError(fmt.Sprintf("%s does not support project-scoped MCP config", e.displayName))
		}
		path, err := e.projectPath()
		return path, "project", err
	}
	path, err := e.globalPath()
	return path, "global", err
}

// Detect checks both scopes, project first.
func (e *configEnv) Detect() (path, scope string, installed bool) {
	for _, project := range []bool{true, false} {
		p, s, err := e.resolve(project)
		if err != nil {
			continue
		}
		if IsServerInstalled(p) {
			return p, s, true
		}
	}
	return "", "", false
}

// Install adds the server entry at the requested scope.
func (e *configEnv) Install(project bool, apiKey string) (string, error) {
	path, _, err := e.resolve(project)
	if err != nil {
		return "", err
	}
	if _, err := InstallServerEntry(path, apiKey); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes the server entry at the requested scope.
func (e *configEnv) Remove(project bool) error {
	path, _, err := e.resolve(project)
	if err != nil {
		return err
	}
	return RemoveServerEntry(path)
}

// Check reports installation status at the requested scope.
func (e *configEnv) Check(project bool) (path, scope string, installed bool, err error) {
	p, s, resolveErr := e.resolve(project)
	if resolveErr != nil {
		return "", "", false, resolveErr
	}
	return p, s, IsServerInstalled(p), nil
}

// homePath joins elem under the user's home directory.
func homePath(elem ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get home directory", err)
	}
	return filepath.Join(append([]string{home}, elem...)...), nil
}

// cwdPath joins elem under the current working directory.
func cwdPath(elem ...string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", output.NewSystemErrorWithCause("failed to get working directory", err)
	}
	return filepath.Join(append([]string{cwd}, elem...)...), nil
}
