package operative

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// EvaluateRequest is an evaluation job forwarded to the backend.
type EvaluateRequest struct {
	URL        string `json:"url"`
	Task       string `json:"task"`
	Prompt     string `json:"prompt"`
	ToolCallID string `json:"tool_call_id"`
}

// Step is one step of the backend agent's transcript.
type Step struct {
	Number  int    `json:"number"`
	PageURL string `json:"page_url,omitempty"`
	Output  string `json:"output,omitempty"`
}

// EvaluateResult is the backend's answer for an evaluation job.
type EvaluateResult struct {
	Result string `json:"result"`
	Steps  []Step `json:"steps,omitempty"`
}

// Evaluate forwards a URL/task pair to the backend automation service and
// returns its verdict plus the step transcript. The ToolCallID is generated
// when the IDE did not supply one.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	if req.ToolCallID == "" {
		req.ToolCallID = uuid.NewString()
	}
	if req.Prompt == "" {
		req.Prompt = EvaluationPrompt(req.URL, req.Task)
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.endpoint("api/evaluate"), req, map[string]string{
		HeaderToolCallID: req.ToolCallID,
	})
	if err != nil {
		return nil, err
	}

	var result EvaluateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to parse evaluation response", err)
	}
	if result.Result == "" {
		return nil, output.NewSystemError("empty result from backend")
	}
	return &result, nil
}
