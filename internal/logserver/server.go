package logserver

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed dashboard/index.html
var dashboardFS embed.FS

// ErrAlreadyRunning indicates another process already serves the dashboard
// address. Callers treat this as success: logs from this process simply
// won't reach that instance's dashboard.
var ErrAlreadyRunning = errors.New("log server address already in use")

// writeWait bounds a single WebSocket write to a client.
const writeWait = 5 * time.Second

// Server serves the embedded dashboard page and the WebSocket log stream.
type Server struct {
	addr     string
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a log server bound to addr (e.g. "127.0.0.1:5009").
func New(addr string, bufferSize int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:   addr,
		hub:    NewHub(bufferSize, logger),
		logger: logger,
		upgrader: websocket.Upgrader{
			// Local-only dashboard; any origin on the loopback is fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Hub returns the hub for producers to send log entries to.
func (s *Server) Hub() *Hub {
	return s.hub
}

// URL returns the browser URL for the dashboard.
func (s *Server) URL() string {
	return "http://" + s.addr
}

// Start begins listening and serving in a background goroutine.
// Returns ErrAlreadyRunning if the address is taken.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		if isAddrInUse(err) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("starting log server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("log server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("control center started", zap.String("url", s.URL()))
	s.hub.Send("Log server started at "+s.URL(), "🚀", TypeStatus)
	return nil
}

// Shutdown stops the HTTP server. Safe to call when Start failed.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := dashboardFS.ReadFile("dashboard/index.html")
	if err != nil {
		http.Error(w, "dashboard page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	// Size the queue for a full history replay plus live traffic.
	c := &client{
		conn: conn,
		send: make(chan Entry, s.hub.max+64),
	}
	s.hub.register(c)
	s.hub.Send("Dashboard client connected at "+time.Now().Format("15:04:05"), "✅", TypeStatus)

	go s.writePump(c)
	go s.readPump(c)
}

// client is one connected dashboard.
type client struct {
	conn *websocket.Conn
	send chan Entry
}

// writePump drains the client's queue onto the socket.
func (s *Server) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()

	for entry := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(entry); err != nil {
			s.hub.unregister(c)
			// Drain so Broadcast never blocks on our queue.
			for range c.send { //nolint:revive // intentional drain
			}
			return
		}
	}
}

// readPump discards inbound messages and detects disconnects.
func (s *Server) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.hub.unregister(c)
			s.hub.Send("Dashboard client disconnected at "+time.Now().Format("15:04:05"), "❌", TypeStatus)
			return
		}
	}
}

// PortBusy reports whether something is already listening on addr.
// Used by doctor and by serve to detect an existing Control Center.
func PortBusy(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	if err != nil {
		return false // connection refused = port is free
	}
	_ = conn.Close()
	return true
}

// isAddrInUse matches the listen failure for a taken port across platforms.
func isAddrInUse(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return strings.Contains(opErr.Err.Error(), "address already in use") ||
			strings.Contains(opErr.Err.Error(), "Only one usage of each socket address")
	}
	return false
}
