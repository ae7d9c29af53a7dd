// Package main provides the entry point for the webeval CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/operative"
	"github.com/operative-sh/web-eval-agent/internal/setup"
)

// validateTimeout bounds the doctor's backend round trip so a dead network
// doesn't hang the whole diagnosis.
const validateTimeout = 15 * time.Second

// runBackendChecks verifies the API key and backend reachability.
func runBackendChecks(ctx context.Context) []checkResult {
	var checks []checkResult

	apiKey := config.APIKey()
	if apiKey == "" {
		checks = append(checks, checkResult{
			Name:    "api key",
			Status:  checkFail,
			Message: "OPERATIVE_API_KEY is not set",
			Hint:    "get a key at https://operative.sh, then run 'webeval setup <editor>'",
		})
		return checks
	}
	checks = append(checks, checkResult{
		Name:    "api key",
		Status:  checkPass,
		Message: "OPERATIVE_API_KEY is set",
	})

	cfg, err := config.Load()
	if err != nil {
		// The config check in runLocalChecks reports the details.
		return checks
	}

	validateCtx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()

	status, err := operative.New(cfg.BackendURL, apiKey).ValidateKey(validateCtx)
	switch {
	case err != nil:
		checks = append(checks, checkResult{
			Name:    "backend",
			Status:  checkWarn,
			Message: fmt.Sprintf("%s unreachable: %v", cfg.BackendURL, err),
			Hint:    "check your network; evaluations will fail until the backend is reachable",
		})
	case !status.Valid:
		msg := "key rejected by backend"
		if status.Reason != "" {
			msg = status.Reason
		}
		checks = append(checks, checkResult{
			Name:    "backend",
			Status:  checkFail,
			Message: msg,
			Hint:    "check your subscription at https://operative.sh",
		})
	default:
		checks = append(checks, checkResult{
			Name:    "backend",
			Status:  checkPass,
			Message: fmt.Sprintf("key accepted by %s", cfg.BackendURL),
		})
	}

	return checks
}

// runLocalChecks verifies the local environment: config, dashboard port,
// and a usable Chrome binary.
func runLocalChecks() []checkResult {
	var checks []checkResult

	cfg, err := config.Load()
	if err != nil {
		checks = append(checks, checkResult{
			Name:    "config",
			Status:  checkFail,
			Message: err.Error(),
			Hint:    "fix or remove " + filepath.Join(config.Dir(), "config.yaml"),
		})
		// Port and browser checks depend on config; use defaults.
		cfg = &config.Config{}
	} else {
		msg := "defaults"
		if _, statErr := os.Stat(filepath.Join(config.Dir(), "config.yaml")); statErr == nil {
			msg = filepath.Join(config.Dir(), "config.yaml")
		}
		checks = append(checks, checkResult{
			Name:    "config",
			Status:  checkPass,
			Message: msg,
		})
	}

	addr := cfg.DashboardAddr
	if addr == "" {
		addr = config.DefaultDashboardAddr
	}
	if logserver.PortBusy(addr) {
		checks = append(checks, checkResult{
			Name:    "dashboard",
			Status:  checkWarn,
			Message: addr + " is in use",
			Hint:    "another webeval instance may already serve the Control Center there",
		})
	} else {
		checks = append(checks, checkResult{
			Name:    "dashboard",
			Status:  checkPass,
			Message: addr + " is available",
		})
	}

	if bin, has := launcher.LookPath(); has {
		checks = append(checks, checkResult{
			Name:    "browser",
			Status:  checkPass,
			Message: bin,
		})
	} else {
		checks = append(checks, checkResult{
			Name:    "browser",
			Status:  checkWarn,
			Message: "no Chrome or Chromium found",
			Hint:    "install Chrome; without it evaluations run but the report has no console/network capture",
		})
	}

	return checks
}

// runIntegrationChecks reports which editors have webeval installed.
func runIntegrationChecks() []checkResult {
	var checks []checkResult

	var installed []string
	for _, env := range setup.AllAgentEnvs() {
		path, scope, ok := env.Detect()
		if !ok {
			continue
		}
		installed = append(installed, env.Name())
		checks = append(checks, checkResult{
			Name:    env.Name(),
			Status:  checkPass,
			Message: fmt.Sprintf("installed (%s, %s)", scope, path),
		})
	}

	if len(installed) == 0 {
		checks = append(checks, checkResult{
			Name:    "editors",
			Status:  checkWarn,
			Message: "no editor integrations found",
			Hint:    "run 'webeval setup <editor>' (" + strings.Join(editorNames(), ", ") + ")",
		})
	}

	return checks
}

// editorNames lists the registered editor identifiers.
func editorNames() []string {
	var names []string
	for _, env := range setup.AllAgentEnvs() {
		names = append(names, env.Name())
	}
	return names
}
