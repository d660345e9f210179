package events

import "sync"

// Ring keeps the most recent events in memory for the debug endpoint
type Ring struct {
	entries []Event
	maxSize int
	mu      sync.RWMutex
}

// NewRing creates a ring buffer holding up to maxSize events
func NewRing(maxSize int) *Ring {
	return &Ring{
		entries: make([]Event, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an event, dropping the oldest entry at capacity
func (r *Ring) Add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.maxSize {
		r.entries = r.entries[1:]
	}
	r.entries = append(r.entries, event)
}

// Recent returns the buffered events, newest first
func (r *Ring) Recent() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, len(r.entries))
	for i, j := 0, len(r.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = r.entries[j]
	}
	return result
}
