package services

import (
	"sync"
	"time"
)

// EventDeduplicator drops readiness signals arriving for the same path within a window.
// A single copy can raise a create and a move event, only the first one is processed.
type EventDeduplicator struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[string]time.Time
}

func NewEventDeduplicator(window time.Duration) *EventDeduplicator {
	return &EventDeduplicator{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// ShouldProcess reports whether at least one window has elapsed since the previous
// signal for path. The timestamp is refreshed even when the signal is dropped,
// so a burst keeps extending the window.
func (d *EventDeduplicator) ShouldProcess(path string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	last, seen := d.lastSeen[path]
	d.lastSeen[path] = now
	if !seen {
		return true
	}
	return now.Sub(last) >= d.window
}

// Evict removes entries older than the window and returns how many were dropped.
// An evicted path behaves exactly like an unseen one.
func (d *EventDeduplicator) Evict(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	evicted := 0
	for path, last := range d.lastSeen {
		if now.Sub(last) >= d.window {
			delete(d.lastSeen, path)
			evicted++
		}
	}
	return evicted
}

func (d *EventDeduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastSeen)
}
