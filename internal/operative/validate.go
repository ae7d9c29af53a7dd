package operative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// KeyStatus is the backend's verdict on a subscription key.
type KeyStatus struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// validateAttempts bounds the retry loop for transient failures.
const validateAttempts = 3

// ValidateKey checks the API key against the backend.
//
// Transient failures (network errors, 5xx) are retried with backoff;
// a 4xx response or a definitive {"valid": false} is terminal. The returned
// KeyStatus is nil only when err is non-nil.
func (c *Client) ValidateKey(ctx context.Context) (*KeyStatus, error) {
	if c.apiKey() == "" {
		return nil, output.NewUserError("no API key configured; set OPERATIVE_API_KEY")
	}

	status, err := retry.DoWithData(
		func() (*KeyStatus, error) {
			return c.validateOnce(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(validateAttempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("could not validate API key", err)
	}
	return status, nil
}

func (c *Client) validateOnce(ctx context.Context) (*KeyStatus, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.endpoint("api/validate-key"), nil, nil)
	if err != nil {
		return nil, err
	}

	var status KeyStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to parse validation response", err)
	}
	return &status, nil
}

// isTransient reports whether a validation failure is worth retrying.
// Network errors are; backend 4xx responses are not.
func isTransient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	// Marshal/parse problems won't heal on retry.
	var exitErr *output.ExitError
	return !errors.As(err, &exitErr)
}
