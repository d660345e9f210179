package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStorage struct {
	mu     sync.Mutex
	stored []Event
}

func (s *recordingStorage) Store(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = append(s.stored, event)
	return nil
}

func (s *recordingStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

func TestPublishDeliversToTypeSubscriber(t *testing.T) {
	bus := NewBus(nil)
	received := make(chan Event, 1)

	bus.Subscribe(EventServerRegistered, func(event Event) {
		received <- event
	})

	bus.Publish(Event{
		Type:   EventServerRegistered,
		Source: "reconciler",
		Server: "lobby",
	})

	select {
	case event := <-received:
		assert.Equal(t, EventServerRegistered, event.Type)
		assert.Equal(t, "lobby", event.Server)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	bus := NewBus(nil)
	received := make(chan Event, 1)

	bus.Subscribe(EventServerUnregistered, func(event Event) {
		received <- event
	})

	bus.Publish(Event{Type: EventServerRegistered})

	select {
	case <-received:
		t.Fatal("handler received an event of the wrong type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus(nil)
	var mu sync.Mutex
	var seen []Type
	done := make(chan struct{}, 2)

	bus.SubscribeAll(func(event Event) {
		mu.Lock()
		seen = append(seen, event.Type)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Publish(Event{Type: EventPlayerJoined})
	bus.Publish(Event{Type: EventCycleCompleted})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("wildcard subscriber missed an event")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []Type{EventPlayerJoined, EventCycleCompleted}, seen)
}

func TestPublishStoresEvents(t *testing.T) {
	storage := &recordingStorage{}
	bus := NewBus(storage)

	bus.Publish(Event{Type: EventCycleFailed, Source: "scheduler"})

	require.Equal(t, 1, storage.count())
	assert.Equal(t, EventCycleFailed, storage.stored[0].Type)
	assert.NotEmpty(t, storage.stored[0].ID)
}

func TestPanickingHandlerDoesNotCrashPublish(t *testing.T) {
	bus := NewBus(nil)
	survived := make(chan struct{}, 1)

	bus.Subscribe(EventPlayerLeft, func(event Event) {
		panic("boom")
	})
	bus.Subscribe(EventPlayerLeft, func(event Event) {
		survived <- struct{}{}
	})

	bus.Publish(Event{Type: EventPlayerLeft})

	select {
	case <-survived:
	case <-time.After(time.Second):
		t.Fatal("second handler never ran")
	}
}
