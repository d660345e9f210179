package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/pkg/config"
)

// DebugHandler exposes read-only views of the live routing state.
type DebugHandler struct {
	table routing.Table
	ring  *events.Ring
	cfg   *config.Config
}

func NewDebugHandler(table routing.Table, ring *events.Ring, cfg *config.Config) *DebugHandler {
	return &DebugHandler{
		table: table,
		ring:  ring,
		cfg:   cfg,
	}
}

// Servers handles GET /debug/servers
func (h *DebugHandler) Servers(c *gin.Context) {
	c.JSON(http.StatusOK, h.table.Registrations())
}

// Config handles GET /debug/config
// Returns the proxy-configuration view the daemon currently holds, plus
// the sync identity it polls with.
func (h *DebugHandler) Config(c *gin.Context) {
	view := routing.Snapshot(h.table)

	c.JSON(http.StatusOK, gin.H{
		"servers":      view.Servers,
		"try":          view.Try,
		"forced_hosts": view.ForcedHosts,
		"sync": gin.H{
			"endpoint":         h.cfg.SyncEndpoint,
			"namespace":        h.cfg.SyncNamespace,
			"identity_path":    h.cfg.IdentityPath(),
			"interval_minutes": h.cfg.SyncIntervalMinutes,
		},
	})
}

// VelocityTOML handles GET /debug/velocity.toml
// The same view rendered the way it would appear in velocity.toml, for
// diffing against a hand-maintained proxy config.
func (h *DebugHandler) VelocityTOML(c *gin.Context) {
	view := routing.Snapshot(h.table)

	rendered, err := view.TOML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.String(http.StatusOK, rendered)
}

// Events handles GET /debug/events
func (h *DebugHandler) Events(c *gin.Context) {
	recent := h.ring.Recent()

	c.JSON(http.StatusOK, gin.H{
		"count":  len(recent),
		"events": recent,
	})
}
