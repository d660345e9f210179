package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the topology sync daemon
var (
	// Reconciliation metrics
	ReconcileChurn = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_reconcile_churn",
			Help: "Registrations added plus removed in the most recent reconcile cycle",
		},
	)

	ReconcileCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysync_reconcile_cycles_total",
			Help: "Total reconcile cycles by result",
		},
		[]string{"result"},
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proxysync_reconcile_duration_seconds",
			Help:    "Duration of one fetch plus reconcile cycle in seconds",
			Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1, 5, 15, 60},
		},
	)

	RegisteredBackends = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_registered_backends",
			Help: "Backends currently registered in the routing table",
		},
	)

	// Player metrics
	OnlinePlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysync_online_players",
			Help: "Players currently connected through the proxy",
		},
	)

	// Event metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysync_events_published_total",
			Help: "Total events published on the internal bus by type",
		},
		[]string{"type"},
	)

	// Backend probe metrics (RCON)
	BackendReachable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxysync_backend_reachable",
			Help: "Whether the backend answered its last RCON probe (1=yes, 0=no)",
		},
		[]string{"server"},
	)

	BackendPlayers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxysync_backend_players",
			Help: "Players online on the backend per its last RCON probe",
		},
		[]string{"server"},
	)
)

// RecordCycleSuccess records a completed reconcile cycle. The churn and
// backend gauges are written by the reconciler itself.
func RecordCycleSuccess(duration time.Duration) {
	ReconcileCyclesTotal.WithLabelValues("success").Inc()
	ReconcileDuration.Observe(duration.Seconds())
}

// RecordCycleFailure records a cycle whose fetch failed. The churn gauge
// keeps its previous value: failed cycles change nothing.
func RecordCycleFailure(duration time.Duration) {
	ReconcileCyclesTotal.WithLabelValues("failure").Inc()
	ReconcileDuration.Observe(duration.Seconds())
}

// RecordEventPublished increments the event counter for one event type
func RecordEventPublished(eventType string) {
	EventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// RecordBackendProbe updates the probe gauges for one backend
func RecordBackendProbe(server string, reachable bool, players int) {
	if reachable {
		BackendReachable.WithLabelValues(server).Set(1)
		BackendPlayers.WithLabelValues(server).Set(float64(players))
	} else {
		BackendReachable.WithLabelValues(server).Set(0)
		BackendPlayers.WithLabelValues(server).Set(0)
	}
}

// ForgetBackend drops the probe series of a backend that left the table
func ForgetBackend(server string) {
	BackendReachable.DeleteLabelValues(server)
	BackendPlayers.DeleteLabelValues(server)
}
