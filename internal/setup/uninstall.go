package setup

import (
	"os"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// RemovedIntegration records one integration that uninstall removed.
type RemovedIntegration struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Scope string `json:"scope"`
}

// RemoveAllIntegrations removes the webeval entry from every editor where
// it is detected, at whichever scope it was found.
func RemoveAllIntegrations() ([]RemovedIntegration, error) {
	var removed []RemovedIntegration
	for _, env := range AllAgentEnvs() {
		path, scope, installed := env.Detect()
		if !installed {
			continue
		}
		if err := env.Remove(scope == "project"); err != nil {
			return removed, err
		}
		removed = append(removed, RemovedIntegration{
			Name:  env.Name(),
			Path:  path,
			Scope: scope,
		})
	}
	return removed, nil
}

// RemoveConfigDir deletes the webeval config directory and everything in it,
// including the browser profile.
func RemoveConfigDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return output.NewSystemErrorWithCause("failed to remove config directory", err)
	}
	return nil
}
