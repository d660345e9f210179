package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/internal/topology"
)

type fakeFetcher struct {
	mu      sync.Mutex
	servers []topology.DesiredServer
	err     error
	calls   int
	called  chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]topology.DesiredServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.servers, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunOnceAppliesFetchedTopology(t *testing.T) {
	table := routing.NewMemoryTable()
	fetcher := &fakeFetcher{servers: []topology.DesiredServer{
		{Name: "lobby", Address: "10.0.0.1", Priority: intPtr(1)},
		{Name: "survival", Address: "10.0.0.2"},
	}}
	scheduler := NewScheduler(fetcher, New(table, nil), nil, time.Minute)

	churn, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, churn)
	assert.Equal(t, []string{"lobby", "survival"}, table.AttemptOrder())
}

func TestFetchFailureLeavesTableUntouched(t *testing.T) {
	table := routing.NewMemoryTable()
	fetcher := &fakeFetcher{servers: []topology.DesiredServer{
		{Name: "lobby", Address: "10.0.0.1"},
	}}
	scheduler := NewScheduler(fetcher, New(table, nil), nil, time.Minute)

	_, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	regsBefore := table.Registrations()
	orderBefore := table.AttemptOrder()

	fetcher.mu.Lock()
	fetcher.err = errors.New("connection refused")
	fetcher.mu.Unlock()

	_, err = scheduler.RunOnce(context.Background())
	require.Error(t, err)

	assert.Equal(t, regsBefore, table.Registrations())
	assert.Equal(t, orderBefore, table.AttemptOrder())
}

func TestSchedulerRunsImmediatelyOnStart(t *testing.T) {
	fetcher := &fakeFetcher{called: make(chan struct{}, 1)}
	scheduler := NewScheduler(fetcher, New(routing.NewMemoryTable(), nil), nil, time.Hour)

	scheduler.Start()
	defer scheduler.Stop()

	select {
	case <-fetcher.called:
	case <-time.After(time.Second):
		t.Fatal("first cycle did not run immediately")
	}
}

func TestSchedulerTicks(t *testing.T) {
	fetcher := &fakeFetcher{}
	scheduler := NewScheduler(fetcher, New(routing.NewMemoryTable(), nil), nil, 10*time.Millisecond)

	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.After(2 * time.Second)
	for fetcher.callCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 cycles, got %d", fetcher.callCount())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerStopWaitsForLoop(t *testing.T) {
	fetcher := &fakeFetcher{}
	scheduler := NewScheduler(fetcher, New(routing.NewMemoryTable(), nil), nil, 10*time.Millisecond)

	scheduler.Start()
	scheduler.Stop()

	calls := fetcher.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, fetcher.callCount(), "no cycles may run after Stop returns")
}
