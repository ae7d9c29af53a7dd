package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/operative-sh/web-eval-agent/internal/browser"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
	"github.com/operative-sh/web-eval-agent/internal/operative"
)

// --- Mocks ---

type mockBackend struct {
	lastReq operative.EvaluateRequest
	result  *operative.EvaluateResult
	err     error
}

func (m *mockBackend) Evaluate(_ context.Context, req operative.EvaluateRequest) (*operative.EvaluateResult, error) {
	m.lastReq = req
	return m.result, m.err
}

type mockBrowser struct {
	cleared      bool
	capturedURL  string
	headless     bool
	captureErr   error
	stateURL     string
	stateErr     error
	consoleLogs  []browser.ConsoleLog
	networkReqs  []browser.NetworkRequest
}

func (m *mockBrowser) ClearLogs() { m.cleared = true }

func (m *mockBrowser) StartCapture(_ context.Context, url string, headless bool) error {
	m.capturedURL = url
	m.headless = headless
	return m.captureErr
}

func (m *mockBrowser) OpenForStateSetup(_ context.Context, url string) error {
	m.stateURL = url
	return m.stateErr
}

func (m *mockBrowser) ConsoleLogs(n int) []browser.ConsoleLog {
	if n > 0 && len(m.consoleLogs) > n {
		return m.consoleLogs[len(m.consoleLogs)-n:]
	}
	return m.consoleLogs
}

func (m *mockBrowser) NetworkRequests(n int) []browser.NetworkRequest {
	if n > 0 && len(m.networkReqs) > n {
		return m.networkReqs[len(m.networkReqs)-n:]
	}
	return m.networkReqs
}

func testDeps(backend *mockBackend, b *mockBrowser) Deps {
	deps := Deps{
		Backend: backend,
		Hub:     NewTestHub(),
		APIKey:  func() string { return "op-test-key" },
	}
	if b != nil {
		deps.Browser = b
	}
	return deps
}

// NewTestHub returns a hub with no clients; Send only records history.
func NewTestHub() *logserver.Hub {
	return logserver.NewHub(100, nil)
}

// --- web_eval_agent tests ---

func TestHandleWebEval_Success(t *testing.T) {
	backend := &mockBackend{
		result: &operative.EvaluateResult{
			Result: "Signup flow works; the submit button has no loading state.",
			Steps: []operative.Step{
				{Number: 1, PageURL: "http://localhost:3000/", Output: "opened landing page"},
				{Number: 2, PageURL: "http://localhost:3000/signup", Output: "filled signup form"},
			},
		},
	}
	b := &mockBrowser{
		consoleLogs: []browser.ConsoleLog{
			{Level: "error", Text: "Uncaught TypeError: x is undefined"},
		},
		networkReqs: []browser.NetworkRequest{
			{URL: "http://localhost:3000/api/signup", Method: "POST", Status: 500},
			{URL: "http://localhost:3000/api/session", Method: "GET"},
		},
	}
	handler := handleWebEval(testDeps(backend, b))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check the signup flow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.Result, "Signup flow works") {
		t.Errorf("Result = %q", out.Result)
	}
	if len(out.Steps) != 2 || out.Steps[1].Output != "filled signup form" {
		t.Errorf("Steps = %+v", out.Steps)
	}
	if len(out.ConsoleLogs) != 1 || !strings.Contains(out.ConsoleLogs[0], "[error]") {
		t.Errorf("ConsoleLogs = %v", out.ConsoleLogs)
	}
	if len(out.NetworkRequests) != 2 {
		t.Fatalf("NetworkRequests = %v", out.NetworkRequests)
	}
	if !strings.Contains(out.NetworkRequests[0], "-> 500") {
		t.Errorf("completed request line = %q", out.NetworkRequests[0])
	}
	if !strings.Contains(out.NetworkRequests[1], "(no response)") {
		t.Errorf("pending request line = %q", out.NetworkRequests[1])
	}

	if !b.cleared {
		t.Error("capture buffers were not cleared")
	}
	if b.capturedURL != "http://localhost:3000" {
		t.Errorf("capturedURL = %q", b.capturedURL)
	}
	if backend.lastReq.Task != "check the signup flow" {
		t.Errorf("backend task = %q", backend.lastReq.Task)
	}
}

func TestHandleWebEval_MissingURL(t *testing.T) {
	handler := handleWebEval(testDeps(&mockBackend{}, nil))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{Task: "check"})
	if err == nil {
		t.Error("expected error for missing url, got nil")
	}
}

func TestHandleWebEval_MissingTask(t *testing.T) {
	handler := handleWebEval(testDeps(&mockBackend{}, nil))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{URL: "http://localhost:3000"})
	if err == nil {
		t.Error("expected error for missing task, got nil")
	}
}

func TestHandleWebEval_MissingAPIKey(t *testing.T) {
	deps := testDeps(&mockBackend{}, nil)
	deps.APIKey = func() string { return "" }
	handler := handleWebEval(deps)

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err == nil {
		t.Fatal("expected error for missing key, got nil")
	}
	if !strings.Contains(err.Error(), "webeval setup") {
		t.Errorf("error = %q, want setup hint", err.Error())
	}
}

func TestHandleWebEval_BackendError(t *testing.T) {
	backend := &mockBackend{err: errors.New("backend unavailable")}
	handler := handleWebEval(testDeps(backend, nil))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "backend unavailable") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestHandleWebEval_CaptureFailureIsNotFatal(t *testing.T) {
	backend := &mockBackend{
		result: &operative.EvaluateResult{Result: "done"},
	}
	b := &mockBrowser{captureErr: errors.New("no chrome on this host")}
	handler := handleWebEval(testDeps(backend, b))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result != "done" {
		t.Errorf("Result = %q", out.Result)
	}
}

func TestHandleWebEval_HeadlessFlagForwarded(t *testing.T) {
	backend := &mockBackend{result: &operative.EvaluateResult{Result: "done"}}
	b := &mockBrowser{}
	handler := handleWebEval(testDeps(backend, b))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:             "http://localhost:3000",
		Task:            "check",
		HeadlessBrowser: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.headless {
		t.Error("headless flag was not forwarded to capture")
	}
}

func TestHandleWebEval_ForwardsToolCallID(t *testing.T) {
	backend := &mockBackend{result: &operative.EvaluateResult{Result: "done"}}
	handler := handleWebEval(testDeps(backend, nil))

	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}}
	req.Params.SetProgressToken("call-42")

	_, _, err := handler(context.Background(), req, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.lastReq.ToolCallID != "call-42" {
		t.Errorf("ToolCallID = %q, want call-42", backend.lastReq.ToolCallID)
	}
}

func TestHandleWebEval_NoProgressToken(t *testing.T) {
	backend := &mockBackend{result: &operative.EvaluateResult{Result: "done"}}
	handler := handleWebEval(testDeps(backend, nil))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The backend client generates an ID when none is supplied.
	if backend.lastReq.ToolCallID != "" {
		t.Errorf("ToolCallID = %q, want empty", backend.lastReq.ToolCallID)
	}
}

func TestHandleWebEval_RelaysStepsToHub(t *testing.T) {
	backend := &mockBackend{
		result: &operative.EvaluateResult{
			Result: "done",
			Steps:  []operative.Step{{Number: 1, Output: "clicked login"}},
		},
	}
	deps := testDeps(backend, nil)
	handler := handleWebEval(deps)

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, WebEvalInput{
		URL:  "http://localhost:3000",
		Task: "check",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, entry := range deps.Hub.Recent() {
		if entry.Type == logserver.TypeAgent && strings.Contains(entry.Data, "clicked login") {
			found = true
		}
	}
	if !found {
		t.Error("agent step never reached the hub")
	}
}

// --- setup_browser_state tests ---

func TestHandleSetupBrowserState_OpensURL(t *testing.T) {
	b := &mockBrowser{}
	handler := handleSetupBrowserState(testDeps(&mockBackend{}, b))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, SetupBrowserStateInput{
		URL: "http://localhost:3000/login",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.stateURL != "http://localhost:3000/login" {
		t.Errorf("stateURL = %q", b.stateURL)
	}
	if out.URL != "http://localhost:3000/login" {
		t.Errorf("out.URL = %q", out.URL)
	}
}

func TestHandleSetupBrowserState_DefaultURL(t *testing.T) {
	b := &mockBrowser{}
	handler := handleSetupBrowserState(testDeps(&mockBackend{}, b))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, SetupBrowserStateInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.stateURL != "about:blank" {
		t.Errorf("stateURL = %q, want about:blank", b.stateURL)
	}
}

func TestHandleSetupBrowserState_NoBrowser(t *testing.T) {
	handler := handleSetupBrowserState(testDeps(&mockBackend{}, nil))

	_, _, err := handler(context.Background(), &mcp.CallToolRequest{}, SetupBrowserStateInput{})
	if err == nil {
		t.Error("expected error without a browser, got nil")
	}
}

// --- Server registration test ---

func TestNewServer_RegistersTools(t *testing.T) {
	server := NewServer("test-version", testDeps(&mockBackend{}, nil))
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}
