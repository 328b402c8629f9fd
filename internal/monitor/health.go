package monitor

import (
	"sync"
	"time"
)

// StreamHealth describes the outcome of a stream's most recent pass.
// Surfaced through the gateway status endpoint so operators can see
// degraded monitoring; individual item failures stay log-only.
type StreamHealth struct {
	LastPassAt time.Time `json:"last_pass_at"`
	LastError  string    `json:"last_error,omitempty"`
	// Degraded is set when an entire pass failed outright (every
	// repository skipped), not when single items were skipped.
	Degraded  bool `json:"degraded"`
	ItemsSeen int  `json:"items_seen"`
	Notified  int  `json:"notified"`
}

// Health aggregates per-stream state behind a lock so the gateway can
// read it while passes run.
type Health struct {
	mu      sync.RWMutex
	streams map[string]StreamHealth
}

// NewHealth creates an empty Health registry.
func NewHealth() *Health {
	return &Health{streams: make(map[string]StreamHealth)}
}

func (h *Health) set(stream string, sh StreamHealth) {
	h.mu.Lock()
	h.streams[stream] = sh
	h.mu.Unlock()
}

// Snapshot returns a copy of all stream states.
func (h *Health) Snapshot() map[string]StreamHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]StreamHealth, len(h.streams))
	for name, sh := range h.streams {
		out[name] = sh
	}
	return out
}

// Degraded reports whether any stream's last pass failed outright.
func (h *Health) Degraded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sh := range h.streams {
		if sh.Degraded {
			return true
		}
	}
	return false
}
