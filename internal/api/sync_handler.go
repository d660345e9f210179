package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftmesh/proxysync/internal/reconcile"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// SyncHandler triggers reconcile cycles outside the schedule
type SyncHandler struct {
	scheduler *reconcile.Scheduler
	table     routing.Table
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(scheduler *reconcile.Scheduler, table routing.Table) *SyncHandler {
	return &SyncHandler{
		scheduler: scheduler,
		table:     table,
	}
}

// Trigger handles POST /internal/sync
// Runs one fetch+reconcile cycle immediately. The next scheduled tick
// is unaffected.
func (h *SyncHandler) Trigger(c *gin.Context) {
	churn, err := h.scheduler.RunOnce(c.Request.Context())
	if err != nil {
		logger.Warn("Manual sync failed", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"churn":   churn,
		"servers": h.table.Registrations(),
	})
}
