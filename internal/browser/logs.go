package browser

import (
	"fmt"
	"sync"
	"time"
)

// storeCapacity bounds each capture buffer. The MCP tool report slices a
// much smaller tail; the extra headroom absorbs chatty pages.
const storeCapacity = 200

// ConsoleLog is one captured browser console message.
type ConsoleLog struct {
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count,omitempty"`
}

// NetworkRequest is one captured request, updated in place when the
// matching response arrives.
type NetworkRequest struct {
	RequestID    string    `json:"-"`
	URL          string    `json:"url"`
	Method       string    `json:"method"`
	ResourceType string    `json:"resource_type,omitempty"`
	Status       int       `json:"status,omitempty"`
	BodySize     int64     `json:"body_size,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// captureStore holds bounded console and network buffers for one session.
type captureStore struct {
	mu       sync.Mutex
	console  []ConsoleLog
	requests []NetworkRequest
}

func newCaptureStore() *captureStore {
	return &captureStore{}
}

func (s *captureStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = nil
	s.requests = nil
}

func (s *captureStore) addConsole(level, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.console = append(s.console, ConsoleLog{Level: level, Text: text, Timestamp: time.Now()})
	if len(s.console) > storeCapacity {
		s.console = s.console[len(s.console)-storeCapacity:]
	}
}

func (s *captureStore) addRequest(req NetworkRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.Timestamp = time.Now()
	s.requests = append(s.requests, req)
	if len(s.requests) > storeCapacity {
		s.requests = s.requests[len(s.requests)-storeCapacity:]
	}
}

// completeRequest attaches response data to the matching request.
// Returns false when the request was never captured (or already completed).
func (s *captureStore) completeRequest(requestID string, status int, bodySize int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		if s.requests[i].RequestID == requestID && s.requests[i].Status == 0 {
			s.requests[i].Status = status
			s.requests[i].BodySize = bodySize
			return true
		}
	}
	return false
}

// consoleLogs returns the last n console messages with adjacent duplicates
// collapsed into a single entry carrying a repeat count.
func (s *captureStore) consoleLogs(n int) []ConsoleLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	var grouped []ConsoleLog
	for _, log := range s.console {
		if len(grouped) > 0 {
			last := &grouped[len(grouped)-1]
			if last.Level == log.Level && last.Text == log.Text {
				last.Count++
				continue
			}
		}
		entry := log
		entry.Count = 1
		grouped = append(grouped, entry)
	}

	if n > 0 && len(grouped) > n {
		grouped = grouped[len(grouped)-n:]
	}

	// Surface the repetition in the text the way the dashboard shows it.
	for i := range grouped {
		if grouped[i].Count > 1 {
			grouped[i].Text = fmt.Sprintf("%s (repeated %d times)", grouped[i].Text, grouped[i].Count)
		}
	}
	return grouped
}

// networkRequests returns the last n captured requests in arrival order.
func (s *captureStore) networkRequests(n int) []NetworkRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.requests
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	result := make([]NetworkRequest, len(out))
	copy(result, out)
	return result
}
