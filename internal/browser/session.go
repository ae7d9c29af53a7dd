// Package browser drives a local Chrome instance over CDP to capture the
// console and network activity of the application under evaluation. Captured
// events are mirrored to the Control Center hub and kept in bounded buffers
// for the MCP tool report.
package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/operative-sh/web-eval-agent/internal/config"
	"github.com/operative-sh/web-eval-agent/internal/logserver"
)

// Manager owns at most one Chrome session at a time.
type Manager struct {
	cfg    config.Browser
	hub    *logserver.Hub
	logger *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	store    *captureStore
}

// NewManager creates a session manager. The hub may be nil when no
// dashboard is running; sends are skipped.
func NewManager(cfg config.Browser, hub *logserver.Hub, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		hub:    hub,
		logger: logger,
		store:  newCaptureStore(),
	}
}

// send mirrors an event to the dashboard when one is attached.
func (m *Manager) send(message, emoji string, t logserver.Type) {
	if m.hub != nil {
		m.hub.Send(message, emoji, t)
	}
}

// StartCapture opens the target URL in a fresh session and begins capturing
// console and network events. Any previous session is closed first.
func (m *Manager) StartCapture(ctx context.Context, url string, headless bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeLocked(); err != nil {
		m.logger.Debug("closing previous session", zap.Error(err))
	}
	m.store.clear()

	page, err := m.launchLocked(ctx, headless)
	if err != nil {
		return err
	}
	m.attachListeners(page)
	m.send("Browser session started, log listeners attached.", "👂", logserver.TypeStatus)

	nav := page.Context(ctx).Timeout(m.cfg.NavigationTimeout())
	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	// Load completion is advisory; capture continues either way.
	if err := nav.WaitLoad(); err != nil {
		m.logger.Debug("page load wait", zap.Error(err))
	}

	m.send("Navigated to: "+url, "🌍", logserver.TypeAgent)
	return nil
}

// OpenForStateSetup opens a visible browser at url and leaves it open so
// the user can log in or otherwise establish session state. Capture runs
// too, so the dashboard shows what the page is doing.
func (m *Manager) OpenForStateSetup(ctx context.Context, url string) error {
	if err := m.StartCapture(ctx, url, false); err != nil {
		return err
	}
	m.send("Browser left open for interactive state setup.", "🔓", logserver.TypeStatus)
	return nil
}

// launchLocked starts Chrome and creates a blank page. Callers hold m.mu.
func (m *Manager) launchLocked(ctx context.Context, headless bool) (*rod.Page, error) {
	l := launcher.New().
		Headless(headless).
		Leakless(true)

	// A stable profile keeps login state across sessions, so state set up
	// interactively carries over into later evaluations.
	if dir := profileDir(); dir != "" {
		l = l.UserDataDir(dir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to chrome: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  m.cfg.ViewportWidth,
		Height: m.cfg.ViewportHeight,
	}); err != nil {
		m.logger.Debug("setting viewport", zap.Error(err))
	}

	m.launcher = l
	m.browser = b
	m.page = page
	return page, nil
}

// attachListeners subscribes to console and network events on the page.
// EachEvent enables the needed CDP domains itself.
func (m *Manager) attachListeners(page *rod.Page) {
	go page.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			level := string(e.Type)
			text := consoleText(e)
			m.store.addConsole(level, text)
			m.send(fmt.Sprintf("CONSOLE [%s]: %s", level, text), "🖥️", logserver.TypeConsole)
		},
		func(e *proto.NetworkRequestWillBeSent) {
			if !ShouldLogRequest(e.Request.URL) {
				return
			}
			m.store.addRequest(NetworkRequest{
				RequestID:    string(e.RequestID),
				URL:          e.Request.URL,
				Method:       e.Request.Method,
				ResourceType: string(e.Type),
			})
			m.send(fmt.Sprintf("NET REQ [%s]: %s", e.Request.Method, e.Request.URL), "➡️", logserver.TypeNetwork)
		},
		func(e *proto.NetworkResponseReceived) {
			if !ShouldLogRequest(e.Response.URL) {
				return
			}
			matched := m.store.completeRequest(string(e.RequestID), e.Response.Status, int64(e.Response.EncodedDataLength))
			if matched {
				m.send(fmt.Sprintf("NET RESP [%d]: %s", e.Response.Status, e.Response.URL), "⬅️", logserver.TypeNetwork)
				return
			}
			m.send(fmt.Sprintf("NET RESP* [%d]: %s (req not matched)", e.Response.Status, e.Response.URL), "⬅️", logserver.TypeNetwork)
		},
	)()
}

// profileDir returns the persistent Chrome profile location, or "" when no
// config directory can be resolved (Chrome then uses a temp profile).
func profileDir() string {
	dir := config.Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "browser-profile")
}

// consoleText flattens a console call's arguments into one line. Remote
// objects carry no primitive value, so fall back to their description.
func consoleText(e *proto.RuntimeConsoleAPICalled) string {
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		text := ""
		if !arg.Value.Nil() {
			text = arg.Value.Str()
		}
		if text == "" && arg.Description != "" {
			text = arg.Description
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// ConsoleLogs returns the last n console messages, deduplicated.
func (m *Manager) ConsoleLogs(n int) []ConsoleLog {
	return m.store.consoleLogs(n)
}

// NetworkRequests returns the last n captured network requests.
func (m *Manager) NetworkRequests(n int) []NetworkRequest {
	return m.store.networkRequests(n)
}

// ClearLogs resets the capture buffers for a new run.
func (m *Manager) ClearLogs() {
	m.store.clear()
}

// Close shuts down the current session, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.closeLocked()
	if err == nil && m.hub != nil {
		m.send("Browser session cleaned up.", "🧹", logserver.TypeStatus)
	}
	return err
}

// closeLocked tears down browser resources. Callers hold m.mu.
func (m *Manager) closeLocked() error {
	if m.browser == nil {
		return nil
	}
	err := m.browser.Close()
	if m.launcher != nil {
		m.launcher.Kill()
	}
	m.browser = nil
	m.page = nil
	m.launcher = nil
	return err
}
