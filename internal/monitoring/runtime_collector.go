package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/craftmesh/proxysync/pkg/logger"
)

// Process runtime gauges, sampled by the background collector
var (
	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_goroutines",
			Help: "Number of goroutines in the daemon process",
		},
	)

	MemoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_memory_alloc_bytes",
			Help: "Heap bytes currently allocated",
		},
	)

	MemorySysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_memory_sys_bytes",
			Help: "Total bytes obtained from the OS",
		},
	)

	GCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_gc_runs_total",
			Help: "Completed GC cycles since process start",
		},
	)
)

// CollectRuntimeMetrics samples the Go runtime once
func CollectRuntimeMetrics() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	Goroutines.Set(float64(runtime.NumGoroutine()))
	MemoryAllocBytes.Set(float64(mem.Alloc))
	MemorySysBytes.Set(float64(mem.Sys))
	GCRuns.Set(float64(mem.NumGC))
}

// StartRuntimeCollector starts a background goroutine that samples the
// runtime gauges periodically
func StartRuntimeCollector(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		// Collect immediately on start
		CollectRuntimeMetrics()

		for range ticker.C {
			CollectRuntimeMetrics()
		}
	}()

	logger.Info("Runtime metrics collector started", map[string]interface{}{
		"interval": interval.String(),
	})
}
