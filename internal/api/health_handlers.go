package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftmesh/proxysync/internal/reconcile"
	"github.com/craftmesh/proxysync/internal/routing"
)

type HealthHandler struct {
	startTime time.Time
	table     routing.Table
	scheduler *reconcile.Scheduler
}

func NewHealthHandler(table routing.Table, scheduler *reconcile.Scheduler) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		table:     table,
		scheduler: scheduler,
	}
}

// Root handles GET /
// The proxy plugin probes this before sending player updates, so the
// body stays a bare "ok".
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "proxysync",
		"uptime":     time.Since(h.startTime).String(),
		"backends":   len(h.table.Registrations()),
		"last_cycle": h.scheduler.LastCycle(),
		"goroutines": runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc_mb": m.Alloc / 1024 / 1024,
			"sys_mb":   m.Sys / 1024 / 1024,
			"num_gc":   m.NumGC,
		},
	})
}
