package players

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinAndLeaveCounting(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Join("alice", "lobby")
	tracker.Join("bob", "lobby")
	tracker.Join("carol", "survival")
	assert.Equal(t, 3, tracker.Online())

	tracker.Leave("bob", "lobby")
	assert.Equal(t, 2, tracker.Online())

	counts := tracker.ByServer()
	assert.Equal(t, 1, counts["lobby"])
	assert.Equal(t, 1, counts["survival"])
}

func TestLeaveFloorsAtZero(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Leave("ghost", "lobby")
	assert.Equal(t, 0, tracker.Online())
	assert.Empty(t, tracker.ByServer())
}

func TestServerEntryRemovedAtZero(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Join("alice", "lobby")
	tracker.Leave("alice", "lobby")

	assert.NotContains(t, tracker.ByServer(), "lobby")
}

func TestJoinWithoutServer(t *testing.T) {
	tracker := NewTracker(nil)

	tracker.Join("alice", "")
	assert.Equal(t, 1, tracker.Online())
	assert.Empty(t, tracker.ByServer())
}

func TestByServerReturnsCopy(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.Join("alice", "lobby")

	counts := tracker.ByServer()
	counts["lobby"] = 99

	assert.Equal(t, 1, tracker.ByServer()["lobby"])
}
