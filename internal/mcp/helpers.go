package mcp

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/operative"
)

// send mirrors a message to the dashboard hub when one is attached.
func (d Deps) send(message, emoji string, t logserver.Type) {
	if d.Hub != nil {
		d.Hub.Send(message, emoji, t)
	}
}

// toolCallID extracts the caller's progress token, the only per-call
// identifier the protocol hands to tool handlers. Empty when the IDE sent
// none; the backend client generates an ID in that case.
func toolCallID(req *mcp.CallToolRequest) string {
	if req == nil || req.Params == nil {
		return ""
	}
	if token := req.Params.GetProgressToken(); token != nil {
		return fmt.Sprint(token)
	}
	return ""
}

// stepText renders one transcript step for the dashboard's agent pane.
func stepText(step operative.Step) string {
	if step.PageURL != "" {
		return fmt.Sprintf("Step %d [%s]: %s", step.Number, step.PageURL, step.Output)
	}
	return fmt.Sprintf("Step %d: %s", step.Number, step.Output)
}

// toEvalSteps converts backend transcript steps to tool output.
func toEvalSteps(steps []operative.Step) []EvalStep {
	result := make([]EvalStep, 0, len(steps))
	for _, step := range steps {
		result = append(result, EvalStep{
			Number:  step.Number,
			PageURL: step.PageURL,
			Output:  step.Output,
		})
	}
	return result
}

// consoleLines formats the last n captured console messages.
func consoleLines(browser BrowserSession, n int) []string {
	if browser == nil {
		return nil
	}
	logs := browser.ConsoleLogs(n)
	lines := make([]string, 0, len(logs))
	for _, log := range logs {
		lines = append(lines, fmt.Sprintf("[%s] %s", log.Level, log.Text))
	}
	return lines
}

// networkLines formats the last n captured network requests.
func networkLines(browser BrowserSession, n int) []string {
	if browser == nil {
		return nil
	}
	reqs := browser.NetworkRequests(n)
	lines := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req.Status != 0 {
			lines = append(lines, fmt.Sprintf("%s %s -> %d", req.Method, req.URL, req.Status))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s (no response)", req.Method, req.URL))
	}
	return lines
}
