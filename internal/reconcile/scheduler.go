package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/internal/topology"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// CycleStatus describes the most recent cycle for the health endpoint.
type CycleStatus struct {
	Time    time.Time `json:"time"`
	Outcome string    `json:"outcome"`
	Churn   int       `json:"churn"`
	Error   string    `json:"error,omitempty"`
}

// Scheduler runs the fetch+reconcile cycle once at startup and then on
// a fixed period. A failed fetch skips the whole cycle: the table keeps
// its last reconciled state and the next tick is the only retry.
type Scheduler struct {
	fetcher    topology.Fetcher
	reconciler *Reconciler
	bus        *events.Bus
	interval   time.Duration
	stopChan   chan struct{}
	wg         sync.WaitGroup

	lastCycle   CycleStatus
	lastCycleMu sync.RWMutex
}

// NewScheduler creates a scheduler. bus may be nil.
func NewScheduler(fetcher topology.Fetcher, reconciler *Reconciler, bus *events.Bus, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:    fetcher,
		reconciler: reconciler,
		bus:        bus,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the reconcile loop
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.syncLoop()
	logger.Info("Reconciliation scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

// Stop stops the loop and waits for an in-flight cycle to finish
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("Reconciliation scheduler stopped", nil)
}

// RunOnce triggers a single cycle outside the schedule, returning its
// churn. Used by the manual sync endpoint. The reconciler's own lock
// keeps a manual cycle from interleaving with a scheduled one.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.runCycle(ctx)
}

// LastCycle returns the status of the most recent cycle. The zero value
// means no cycle has run yet.
func (s *Scheduler) LastCycle() CycleStatus {
	s.lastCycleMu.RLock()
	defer s.lastCycleMu.RUnlock()
	return s.lastCycle
}

func (s *Scheduler) recordCycle(status CycleStatus) {
	s.lastCycleMu.Lock()
	s.lastCycle = status
	s.lastCycleMu.Unlock()
}

func (s *Scheduler) syncLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First cycle runs immediately
	s.runCycle(context.Background())

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runCycle(context.Background())
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) (int, error) {
	cycleID := uuid.NewString()
	start := time.Now()

	servers, err := s.fetcher.Fetch(ctx)
	if err != nil {
		monitoring.RecordCycleFailure(time.Since(start))
		// The fetch error carries the attempted URL
		logger.Error("Topology fetch failed, keeping previous routing state", err, map[string]interface{}{
			"cycle_id": cycleID,
		})
		s.recordCycle(CycleStatus{Time: start, Outcome: "failed", Error: err.Error()})
		s.publishCycle(events.EventCycleFailed, map[string]interface{}{
			"cycle_id": cycleID,
			"error":    err.Error(),
		})
		return 0, err
	}

	churn := s.reconciler.Reconcile(servers)
	duration := time.Since(start)
	monitoring.RecordCycleSuccess(duration)
	s.recordCycle(CycleStatus{Time: start, Outcome: "success", Churn: churn})

	logger.Info("Reconcile cycle completed", map[string]interface{}{
		"cycle_id": cycleID,
		"desired":  len(servers),
		"churn":    churn,
		"duration": duration.String(),
	})
	s.publishCycle(events.EventCycleCompleted, map[string]interface{}{
		"cycle_id": cycleID,
		"desired":  len(servers),
		"churn":    churn,
	})

	return churn, nil
}

func (s *Scheduler) publishCycle(eventType events.Type, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Type:   eventType,
		Source: "scheduler",
		Data:   data,
	})
}
