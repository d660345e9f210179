package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/craftmesh/proxysync/internal/middleware"
	"github.com/craftmesh/proxysync/pkg/config"
)

func SetupRouter(
	healthHandler *HealthHandler,
	debugHandler *DebugHandler,
	playerHandler *PlayerHandler,
	syncHandler *SyncHandler,
	stream *TopologyStream,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with custom middleware
	router := gin.New()

	// Global middleware (in order)
	router.Use(gin.Recovery())             // Panic recovery
	router.Use(middleware.ErrorHandler())  // Error handling
	router.Use(middleware.RequestLogger()) // Request logging

	// Liveness endpoints
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck) // Docker healthcheck uses HEAD

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Debug surface (read-only views of live routing state)
	debug := router.Group("/debug")
	{
		debug.GET("/servers", debugHandler.Servers)
		debug.GET("/config", debugHandler.Config)
		debug.GET("/velocity.toml", debugHandler.VelocityTOML)
		debug.GET("/events", debugHandler.Events)
	}

	// Internal API (for the Velocity plugin - NO AUTH required, network isolation)
	internal := router.Group("/internal")
	{
		internal.POST("/players/join", playerHandler.Join)
		internal.POST("/players/leave", playerHandler.Leave)
		internal.POST("/sync", syncHandler.Trigger)
	}

	// Live event stream for dashboards
	router.GET("/ws/topology", stream.HandleConnection)

	return router
}
