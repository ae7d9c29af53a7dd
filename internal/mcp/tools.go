package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/operative"
)

// maxReportEntries bounds the console and network tails included in a tool
// report. The dashboard keeps the full stream; the report stays readable.
const maxReportEntries = 10

// --- web_eval_agent tool ---

// WebEvalInput is the input for the web_eval_agent tool.
type WebEvalInput struct {
	URL             string `json:"url"                        jsonschema:"URL of the locally running web application to evaluate"`
	Task            string `json:"task"                       jsonschema:"what to test, e.g. 'check the signup flow'"`
	HeadlessBrowser bool   `json:"headless_browser,omitempty" jsonschema:"run the local capture browser without a visible window"`
}

// EvalStep is one step of the remote agent's transcript.
type EvalStep struct {
	Number  int    `json:"number"             jsonschema:"step number, starting at 1"`
	PageURL string `json:"page_url,omitempty" jsonschema:"page the agent was on"`
	Output  string `json:"output,omitempty"   jsonschema:"what the agent did or observed"`
}

// WebEvalOutput is the output for the web_eval_agent tool.
type WebEvalOutput struct {
	Result          string     `json:"result"                     jsonschema:"final UX evaluation verdict"`
	Steps           []EvalStep `json:"steps,omitempty"            jsonschema:"agent step transcript"`
	ConsoleLogs     []string   `json:"console_logs,omitempty"     jsonschema:"last captured browser console messages"`
	NetworkRequests []string   `json:"network_requests,omitempty" jsonschema:"last captured network requests"`
}

func handleWebEval(deps Deps) mcp.ToolHandlerFor[WebEvalInput, WebEvalOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WebEvalInput) (*mcp.CallToolResult, WebEvalOutput, error) {
		if input.URL == "" {
			return nil, WebEvalOutput{}, errors.New("url is required")
		}
		if input.Task == "" {
			return nil, WebEvalOutput{}, errors.New("task is required")
		}
		if deps.APIKey() == "" {
			return nil, WebEvalOutput{}, errors.New(
				"no OPERATIVE_API_KEY found; run `webeval setup <editor>` with your " +
					"operative.sh API key, or export OPERATIVE_API_KEY",
			)
		}

		deps.send(fmt.Sprintf("Starting UX evaluation of %s", input.URL), "🚀", logserver.TypeStatus)
		deps.send(fmt.Sprintf("Task: %s", input.Task), "📋", logserver.TypeStatus)

		// Capture is best-effort: evaluation proceeds without a local
		// browser, the report just has no console/network tail.
		if deps.Browser != nil {
			deps.Browser.ClearLogs()
			if err := deps.Browser.StartCapture(ctx, input.URL, input.HeadlessBrowser); err != nil {
				deps.send(fmt.Sprintf("Local browser capture unavailable: %v", err), "⚠️", logserver.TypeStatus)
			}
		}

		result, err := deps.Backend.Evaluate(ctx, operative.EvaluateRequest{
			URL:        input.URL,
			Task:       input.Task,
			ToolCallID: toolCallID(req),
		})
		if err != nil {
			deps.send(fmt.Sprintf("Evaluation failed: %v", err), "❌", logserver.TypeStatus)
			return nil, WebEvalOutput{}, fmt.Errorf("evaluating %s: %w", input.URL, err)
		}

		for _, step := range result.Steps {
			deps.send(stepText(step), "🏃", logserver.TypeAgent)
		}
		deps.send("Evaluation complete.", "✅", logserver.TypeStatus)

		out := WebEvalOutput{
			Result:          result.Result,
			Steps:           toEvalSteps(result.Steps),
			ConsoleLogs:     consoleLines(deps.Browser, maxReportEntries),
			NetworkRequests: networkLines(deps.Browser, maxReportEntries),
		}
		return nil, out, nil
	}
}

// --- setup_browser_state tool ---

// SetupBrowserStateInput is the input for the setup_browser_state tool.
type SetupBrowserStateInput struct {
	URL string `json:"url,omitempty" jsonschema:"page to open, e.g. your app's login page"`
}

// SetupBrowserStateOutput is the output for the setup_browser_state tool.
type SetupBrowserStateOutput struct {
	Message string `json:"message" jsonschema:"instructions for the user"`
	URL     string `json:"url"     jsonschema:"page that was opened"`
}

func handleSetupBrowserState(deps Deps) mcp.ToolHandlerFor[SetupBrowserStateInput, SetupBrowserStateOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetupBrowserStateInput) (*mcp.CallToolResult, SetupBrowserStateOutput, error) {
		if deps.Browser == nil {
			return nil, SetupBrowserStateOutput{}, errors.New("no local browser available on this host")
		}

		url := input.URL
		if url == "" {
			url = "about:blank"
		}

		if err := deps.Browser.OpenForStateSetup(ctx, url); err != nil {
			return nil, SetupBrowserStateOutput{}, fmt.Errorf("opening browser at %s: %w", url, err)
		}

		out := SetupBrowserStateOutput{
			Message: "Browser opened. Log in or set up any session state you need, " +
				"then close the window; subsequent evaluations reuse the saved state.",
			URL: url,
		}
		return nil, out, nil
	}
}
