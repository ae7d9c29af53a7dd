// Package operative provides the HTTP client for the operative.sh
// browser-automation backend. The backend is treated as a black box: this
// client validates subscription keys and forwards evaluation requests,
// relaying whatever the service returns.
package operative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/operative-sh/web-eval-agent/internal/output"
)

// Backend request headers.
const (
	HeaderAPIKey     = "x-operative-api-key"
	HeaderToolCallID = "x-operative-tool-call-id"
)

// HTTPDoer defines the HTTP operations required by Client.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the operative.sh backend.
type Client struct {
	baseURL    string
	apiKey     func() string
	httpClient HTTPDoer
}

// New creates a backend client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return NewWithKeyFunc(baseURL, func() string { return apiKey })
}

// NewWithKeyFunc creates a backend client that resolves the API key at
// request time, so a key exported after the process started is still sent.
func NewWithKeyFunc(baseURL string, apiKey func() string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Evaluations drive a real browser on the backend; allow long runs.
			Timeout: 10 * time.Minute,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client. Returns the client
// for chaining; used by tests to inject doubles.
func (c *Client) WithHTTPClient(doer HTTPDoer) *Client {
	c.httpClient = doer
	return c
}

// endpoint joins a path onto the backend base URL.
func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// statusError is returned for non-2xx backend responses. It keeps the
// status code so callers can distinguish transient 5xx from terminal 4xx.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.status, e.body)
}

// doRequest performs an HTTP request with the operative key header and
// decodes the response body. A nil body sends a GET, otherwise a JSON POST.
func (c *Client) doRequest(ctx context.Context, method, url string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, output.NewSystemErrorWithCause("failed to marshal request", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to create request", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderAPIKey, c.apiKey())
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Truncate error body to prevent sensitive data leakage and memory issues
		errBody := string(respBody)
		if len(errBody) > 500 {
			errBody = errBody[:500]
		}
		return nil, &statusError{status: resp.StatusCode, body: errBody}
	}

	return respBody, nil
}
