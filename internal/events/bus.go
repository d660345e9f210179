package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// Type classifies an event on the bus
type Type string

const (
	// Topology events, emitted by the reconcile loop
	EventServerRegistered   Type = "topology.server.registered"
	EventServerUnregistered Type = "topology.server.unregistered"
	EventCycleCompleted     Type = "topology.cycle.completed"
	EventCycleFailed        Type = "topology.cycle.failed"

	// Player events, emitted on proxy notifications
	EventPlayerJoined Type = "player.joined"
	EventPlayerLeft   Type = "player.left"
)

// Event is one occurrence on the bus
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"` // e.g. "reconciler", "player_tracker"
	Server    string                 `json:"server,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler is a function that handles events
type Handler func(event Event)

// Storage receives every published event for persistence
type Storage interface {
	Store(event Event) error
}

// Bus fans events out to subscribers and an optional storage backend.
// Handlers run on their own goroutine so a slow consumer never blocks
// the reconcile loop.
type Bus struct {
	subscribers map[Type][]Handler
	all         []Handler
	storage     Storage
	mu          sync.RWMutex
}

// NewBus creates an event bus. storage may be nil.
func NewBus(storage Storage) *Bus {
	return &Bus{
		subscribers: make(map[Type][]Handler),
		storage:     storage,
	}
}

// Subscribe registers a handler for one event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)
}

// Publish delivers an event to storage and all matching subscribers
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	monitoring.RecordEventPublished(string(event.Type))

	if b.storage != nil {
		if err := b.storage.Store(event); err != nil {
			logger.Error("Failed to store event", err, map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
			})
		}
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.all))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Event handler panicked", nil, map[string]interface{}{
						"event_type": event.Type,
						"panic":      r,
					})
				}
			}()
			h(event)
		}(handler)
	}

	logger.Debug("Event published", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": event.Type,
		"source":     event.Source,
	})
}
