package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/routing"
)

func dialStream(t *testing.T, stream *TopologyStream) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws/topology", stream.HandleConnection)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/topology"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestTopologyStreamSendsSnapshotOnConnect(t *testing.T) {
	table := routing.NewMemoryTable()
	table.Register(routing.Registration{Name: "lobby", Address: "10.0.0.1:25565"})
	table.SetAttemptOrder([]string{"lobby"})

	stream := NewTopologyStream(table)
	go stream.Run()
	defer stream.Shutdown()

	conn := dialStream(t, stream)

	var snapshot events.Event
	require.NoError(t, conn.ReadJSON(&snapshot))

	assert.Equal(t, snapshotType, snapshot.Type)
	servers, ok := snapshot.Data["servers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1:25565", servers["lobby"])
}

func TestTopologyStreamBroadcastsEvents(t *testing.T) {
	stream := NewTopologyStream(routing.NewMemoryTable())
	go stream.Run()
	defer stream.Shutdown()

	conn := dialStream(t, stream)

	// Drain the connect snapshot first
	var snapshot events.Event
	require.NoError(t, conn.ReadJSON(&snapshot))

	stream.Broadcast(events.Event{
		Type:      events.EventServerRegistered,
		Timestamp: time.Now(),
		Server:    "survival",
	})

	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, events.EventServerRegistered, got.Type)
	assert.Equal(t, "survival", got.Server)
}
