package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftmesh/proxysync/internal/api"
	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/internal/players"
	"github.com/craftmesh/proxysync/internal/probe"
	"github.com/craftmesh/proxysync/internal/reconcile"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/internal/topology"
	"github.com/craftmesh/proxysync/pkg/config"
	"github.com/craftmesh/proxysync/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout, cfg.LogJSON)
	logger.SetDefault(appLogger)

	logger.Info("Starting application", map[string]interface{}{
		"app":   cfg.AppName,
		"debug": cfg.Debug,
		"port":  cfg.Port,
	})

	// Event bus, with InfluxDB persistence when configured
	var influxStorage *events.InfluxStorage
	var storage events.Storage
	if cfg.InfluxDBEnabled {
		s, err := events.NewInfluxStorage(events.InfluxConfig{
			URL:    cfg.InfluxDBURL,
			Token:  cfg.InfluxDBToken,
			Org:    cfg.InfluxDBOrg,
			Bucket: cfg.InfluxDBBucket,
		})
		if err != nil {
			logger.Warn("Failed to initialize InfluxDB, events stay in memory only", map[string]interface{}{
				"error": err.Error(),
				"url":   cfg.InfluxDBURL,
			})
		} else {
			influxStorage = s
			storage = s
			logger.Info("Event storage initialized", map[string]interface{}{
				"influxdb_url": cfg.InfluxDBURL,
				"org":          cfg.InfluxDBOrg,
				"bucket":       cfg.InfluxDBBucket,
			})
		}
	}

	bus := events.NewBus(storage)

	// Recent-events ring backing /debug/events
	ring := events.NewRing(256)
	bus.SubscribeAll(ring.Add)

	// Routing table: the daemon's authoritative view of the proxy
	table := routing.NewMemoryTable()

	// Reconcile loop against the control plane
	fetcher := topology.NewHTTPFetcher(cfg.SyncEndpoint, cfg.SyncNamespace, cfg.IdentityPath())
	logger.Info("Topology fetcher initialized", map[string]interface{}{
		"url": fetcher.URL(),
	})

	reconciler := reconcile.New(table, bus)
	scheduler := reconcile.NewScheduler(fetcher, reconciler, bus, time.Duration(cfg.SyncIntervalMinutes)*time.Minute)
	scheduler.Start()

	// Player tracker fed by the proxy plugin
	tracker := players.NewTracker(bus)

	// Optional RCON probe for backend reachability
	var prober *probe.Prober
	if cfg.RCONProbeEnabled {
		prober = probe.NewProber(table, cfg.RCONPassword, cfg.RCONPort, time.Duration(cfg.RCONProbeIntervalSeconds)*time.Second)
		prober.Start()
		logger.Info("Backend probe started", map[string]interface{}{
			"rcon_port":        cfg.RCONPort,
			"interval_seconds": cfg.RCONProbeIntervalSeconds,
		})
	}

	// Runtime metrics collector
	monitoring.StartRuntimeCollector(30 * time.Second)

	// Websocket stream for dashboards
	stream := api.NewTopologyStream(table)
	go stream.Run()
	bus.SubscribeAll(stream.Broadcast)
	logger.Info("Topology stream started", nil)

	// Setup router
	router := api.SetupRouter(
		api.NewHealthHandler(table, scheduler),
		api.NewDebugHandler(table, ring, cfg),
		api.NewPlayerHandler(tracker),
		api.NewSyncHandler(scheduler, table),
		stream,
		cfg,
	)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...", nil)

		scheduler.Stop()
		if prober != nil {
			prober.Stop()
		}
		stream.Shutdown()
		if influxStorage != nil {
			influxStorage.Close()
		}

		logger.Info("Shutdown complete", nil)
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address":      addr,
		"health_check": fmt.Sprintf("http://localhost%s/health", addr),
		"metrics":      fmt.Sprintf("http://localhost%s/metrics", addr),
	})

	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", err, nil)
	}
}
