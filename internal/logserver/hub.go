// Package logserver implements the Operative Control Center: a local
// WebSocket hub that broadcasts categorized log events to a browser
// dashboard. Everything here is best-effort; a missing or dead dashboard
// must never fail an evaluation.
package logserver

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Type categorizes a log event. The dashboard renders one pane per type.
type Type string

// Log event types, matching the dashboard's panes.
const (
	TypeStatus  Type = "status"
	TypeAgent   Type = "agent"
	TypeConsole Type = "console"
	TypeNetwork Type = "network"
)

// Entry is a single dashboard event.
type Entry struct {
	Data string `json:"data"`
	Type Type   `json:"type"`
}

// Hub fans log entries out to connected dashboard clients and keeps a
// bounded history that is replayed to clients connecting mid-run.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	recent  []Entry
	max     int
}

// NewHub creates a hub keeping at most bufferSize entries of history.
func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
		max:     bufferSize,
	}
}

// Send formats a message with an emoji prefix and broadcasts it.
func (h *Hub) Send(message, emoji string, t Type) {
	h.Broadcast(Entry{Data: fmt.Sprintf("%s %s", emoji, message), Type: t})
}

// Broadcast delivers an entry to all connected clients and records it in
// history. Clients that cannot keep up are dropped rather than blocking
// the sender.
func (h *Hub) Broadcast(entry Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.recent = append(h.recent, entry)
	if len(h.recent) > h.max {
		h.recent = h.recent[len(h.recent)-h.max:]
	}

	for c := range h.clients {
		select {
		case c.send <- entry:
		default:
			// Slow client; drop it.
			h.logger.Debug("dropping slow dashboard client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Recent returns a copy of the buffered history.
func (h *Hub) Recent() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.recent))
	copy(out, h.recent)
	return out
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds a client and replays history into its send queue.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	for _, entry := range h.recent {
		select {
		case c.send <- entry:
		default:
			// Replay overflow; the live stream takes priority.
			return
		}
	}
}

// unregister removes a client if still present.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
