package events

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingKeepsNewestFirst(t *testing.T) {
	ring := NewRing(10)
	ring.Add(Event{ID: "first"})
	ring.Add(Event{ID: "second"})
	ring.Add(Event{ID: "third"})

	recent := ring.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "third", recent[0].ID)
	assert.Equal(t, "first", recent[2].ID)
}

func TestRingDropsOldestAtCapacity(t *testing.T) {
	ring := NewRing(3)
	for i := 0; i < 5; i++ {
		ring.Add(Event{ID: fmt.Sprintf("event-%d", i)})
	}

	recent := ring.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "event-4", recent[0].ID)
	assert.Equal(t, "event-2", recent[2].ID)
}

func TestRingEmpty(t *testing.T) {
	assert.Empty(t, NewRing(3).Recent())
}
