package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The daemon binds to the proxy's private network; the debug
		// surface carries no credentials worth protecting from a page.
		return true
	},
}

// snapshotType marks the synthetic event sent to a freshly connected
// client. It never goes through the bus.
const snapshotType events.Type = "topology.snapshot"

// TopologyStream broadcasts every published event to connected
// websocket clients. New clients first receive a snapshot of the
// current routing state so they can render without waiting for the
// next cycle.
type TopologyStream struct {
	table        routing.Table
	clients      map[*websocket.Conn]bool
	clientsMutex sync.RWMutex
	broadcast    chan events.Event
	register     chan *websocket.Conn
	unregister   chan *websocket.Conn
	shutdownChan chan struct{}
}

// NewTopologyStream creates a new stream manager
func NewTopologyStream(table routing.Table) *TopologyStream {
	return &TopologyStream{
		table:        table,
		clients:      make(map[*websocket.Conn]bool),
		broadcast:    make(chan events.Event, 256),
		register:     make(chan *websocket.Conn),
		unregister:   make(chan *websocket.Conn),
		shutdownChan: make(chan struct{}),
	}
}

// Run starts the stream manager (run in goroutine)
func (ts *TopologyStream) Run() {
	logger.Info("TopologyStream: Starting websocket manager", nil)

	// Periodic snapshots keep clients converged even when they miss
	// individual events
	snapshotTicker := time.NewTicker(30 * time.Second)
	defer snapshotTicker.Stop()

	for {
		select {
		case client := <-ts.register:
			ts.clientsMutex.Lock()
			ts.clients[client] = true
			total := len(ts.clients)
			ts.clientsMutex.Unlock()

			logger.Info("TopologyStream: Client connected", map[string]interface{}{
				"total_clients": total,
			})

			go ts.sendToClient(client, ts.snapshotEvent())

		case client := <-ts.unregister:
			ts.clientsMutex.Lock()
			if _, ok := ts.clients[client]; ok {
				delete(ts.clients, client)
				client.Close()
			}
			total := len(ts.clients)
			ts.clientsMutex.Unlock()

			logger.Info("TopologyStream: Client disconnected", map[string]interface{}{
				"total_clients": total,
			})

		case event := <-ts.broadcast:
			ts.clientsMutex.RLock()
			for client := range ts.clients {
				go ts.sendToClient(client, event)
			}
			ts.clientsMutex.RUnlock()

		case <-snapshotTicker.C:
			snapshot := ts.snapshotEvent()
			ts.clientsMutex.RLock()
			for client := range ts.clients {
				go ts.sendToClient(client, snapshot)
			}
			ts.clientsMutex.RUnlock()

		case <-ts.shutdownChan:
			logger.Info("TopologyStream: Shutting down", nil)
			return
		}
	}
}

// HandleConnection handles websocket upgrade and client connection
// GET /ws/topology
func (ts *TopologyStream) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("TopologyStream: Failed to upgrade connection", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ts.register <- conn

	go ts.handleClientMessages(conn)
}

// Broadcast queues an event for delivery to all connected clients.
// Safe to use as a bus handler: it never blocks.
func (ts *TopologyStream) Broadcast(event events.Event) {
	select {
	case ts.broadcast <- event:
	default:
		logger.Warn("TopologyStream: Broadcast channel full, dropping event", map[string]interface{}{
			"event_type": string(event.Type),
		})
	}
}

// Shutdown stops the manager and closes all client connections
func (ts *TopologyStream) Shutdown() {
	close(ts.shutdownChan)

	ts.clientsMutex.Lock()
	for client := range ts.clients {
		client.Close()
	}
	ts.clients = make(map[*websocket.Conn]bool)
	ts.clientsMutex.Unlock()
}

// handleClientMessages keeps the connection alive with ping/pong and
// unregisters the client when it goes away
func (ts *TopologyStream) handleClientMessages(conn *websocket.Conn) {
	defer func() {
		ts.unregister <- conn
	}()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(30 * time.Second)

	done := make(chan struct{})
	defer func() {
		pingTicker.Stop()
		close(done)
	}()

	go func() {
		for {
			select {
			case <-pingTicker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Clients only listen today; reads exist to notice disconnects
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("TopologyStream: Unexpected close error", map[string]interface{}{
					"error": err.Error(),
				})
			}
			break
		}
	}
}

func (ts *TopologyStream) sendToClient(client *websocket.Conn, event events.Event) {
	client.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := client.WriteJSON(event); err != nil {
		logger.Debug("TopologyStream: Failed to send message", map[string]interface{}{
			"error": err.Error(),
		})
		ts.unregister <- client
	}
}

func (ts *TopologyStream) snapshotEvent() events.Event {
	view := routing.Snapshot(ts.table)

	return events.Event{
		Type:      snapshotType,
		Timestamp: time.Now(),
		Source:    "stream",
		Data: map[string]interface{}{
			"servers":      view.Servers,
			"try":          view.Try,
			"forced_hosts": view.ForcedHosts,
		},
	}
}
