package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftmesh/proxysync/internal/players"
)

// PlayerHandler receives join/leave reports from the proxy plugin
type PlayerHandler struct {
	tracker *players.Tracker
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(tracker *players.Tracker) *PlayerHandler {
	return &PlayerHandler{
		tracker: tracker,
	}
}

type playerEventRequest struct {
	Player string `json:"player" binding:"required"`
	Server string `json:"server"`
}

// Join handles POST /internal/players/join
// Called by the Velocity plugin when a player connects to the proxy
func (h *PlayerHandler) Join(c *gin.Context) {
	var req playerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.tracker.Join(req.Player, req.Server)

	c.JSON(http.StatusOK, gin.H{
		"online": h.tracker.Online(),
	})
}

// Leave handles POST /internal/players/leave
// Called by the Velocity plugin when a player disconnects
func (h *PlayerHandler) Leave(c *gin.Context) {
	var req playerEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.tracker.Leave(req.Player, req.Server)

	c.JSON(http.StatusOK, gin.H{
		"online": h.tracker.Online(),
	})
}
