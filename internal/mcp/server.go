// Package mcp provides the Model Context Protocol server for webeval.
// It exposes the evaluation and browser-state tools that an MCP-capable
// IDE agent calls over stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/operative-sh/web-eval-agent/internal/browser"
	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/operative"
)

// Evaluator forwards evaluation jobs to the operative.sh backend.
type Evaluator interface {
	Evaluate(ctx context.Context, req operative.EvaluateRequest) (*operative.EvaluateResult, error)
}

// BrowserSession captures console and network activity of the target app.
type BrowserSession interface {
	ClearLogs()
	StartCapture(ctx context.Context, url string, headless bool) error
	OpenForStateSetup(ctx context.Context, url string) error
	ConsoleLogs(n int) []browser.ConsoleLog
	NetworkRequests(n int) []browser.NetworkRequest
}

// Deps carries everything the tool handlers need. Hub and Browser may be
// nil; the handlers degrade to backend-only operation.
type Deps struct {
	Backend Evaluator
	Browser BrowserSession
	Hub     *logserver.Hub

	// APIKey is called per tool invocation so a key exported after the
	// server started is still picked up. Defaults to the environment.
	APIKey func() string
}

// NewServer creates an MCP server with the webeval tools registered.
func NewServer(version string, deps Deps) *mcp.Server {
	if deps.APIKey == nil {
		deps.APIKey = config.APIKey
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "web-eval-agent",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// evalAnnotations marks the evaluation tool: it drives a remote service and
// a local browser, but never destroys anything.
func evalAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(true),
	}
}

// registerTools adds the webeval tools to the server.
func registerTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "web_eval_agent",
		Description: "Evaluate the user experience of a locally running web application. " +
			"Provide the app URL and a task describing what to test; a browser agent " +
			"works through the task and reports UX issues, console errors, and failed " +
			"network requests. Watch progress live on the Control Center dashboard.",
		Annotations: evalAnnotations(),
	}, handleWebEval(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name: "setup_browser_state",
		Description: "Open an interactive browser window so the user can log in or " +
			"establish other session state before running an evaluation. The window " +
			"stays open until the user closes it.",
		Annotations: evalAnnotations(),
	}, handleSetupBrowserState(deps))
}
