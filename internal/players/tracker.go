package players

import (
	"sync"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// Tracker keeps the live player count. The proxy reports every join and
// leave over the internal API; the count is independent of the
// reconcile loop and survives fetch failures untouched.
type Tracker struct {
	total    int
	byServer map[string]int
	bus      *events.Bus
	mu       sync.Mutex
}

// NewTracker creates a tracker. bus may be nil.
func NewTracker(bus *events.Bus) *Tracker {
	return &Tracker{
		byServer: make(map[string]int),
		bus:      bus,
	}
}

// Join records a player connecting through the proxy
func (t *Tracker) Join(player, server string) {
	t.mu.Lock()
	t.total++
	if server != "" {
		t.byServer[server]++
	}
	total := t.total
	t.mu.Unlock()

	monitoring.OnlinePlayers.Set(float64(total))
	logger.Debug("Player joined", map[string]interface{}{
		"player": player,
		"server": server,
		"online": total,
	})
	t.publish(events.EventPlayerJoined, player, server, total)
}

// Leave records a player disconnecting. Counts floor at zero: a stray
// leave after a proxy restart must not drive the gauge negative.
func (t *Tracker) Leave(player, server string) {
	t.mu.Lock()
	if t.total > 0 {
		t.total--
	}
	if server != "" && t.byServer[server] > 0 {
		t.byServer[server]--
		if t.byServer[server] == 0 {
			delete(t.byServer, server)
		}
	}
	total := t.total
	t.mu.Unlock()

	monitoring.OnlinePlayers.Set(float64(total))
	logger.Debug("Player left", map[string]interface{}{
		"player": player,
		"server": server,
		"online": total,
	})
	t.publish(events.EventPlayerLeft, player, server, total)
}

// Online returns the current live player count
func (t *Tracker) Online() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// ByServer returns a copy of the per-backend player counts
func (t *Tracker) ByServer() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int, len(t.byServer))
	for server, count := range t.byServer {
		counts[server] = count
	}
	return counts
}

func (t *Tracker) publish(eventType events.Type, player, server string, online int) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(events.Event{
		Type:   eventType,
		Source: "player_tracker",
		Server: server,
		Data: map[string]interface{}{
			"player": player,
			"online": online,
		},
	})
}
