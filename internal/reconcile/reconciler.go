package reconcile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/craftmesh/proxysync/internal/events"
	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/internal/topology"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// Reconciler drives the routing table to the control plane's desired
// topology: it unregisters backends that disappeared, registers new
// ones at the game port, and rebuilds the attempt order and forced-host
// map wholesale from the desired set.
//
// There is no rollback. If the process dies mid-cycle the table may
// hold a partial result; the next cycle converges it again.
type Reconciler struct {
	table routing.Table
	bus   *events.Bus
	mu    sync.Mutex
}

// New creates a reconciler writing to the given table. bus may be nil.
func New(table routing.Table, bus *events.Bus) *Reconciler {
	return &Reconciler{
		table: table,
		bus:   bus,
	}
}

// Reconcile applies one desired topology and returns the churn: the
// number of registrations added plus removed. Calls are serialized by
// an internal lock, so overlapping cycles queue instead of interleaving.
func (r *Reconciler) Reconcile(desired []topology.DesiredServer) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Later duplicates win. The order slice keeps each name's first
	// position, which is the tie-break for equal priorities.
	byName := make(map[string]topology.DesiredServer, len(desired))
	order := make([]string, 0, len(desired))
	for _, server := range desired {
		if _, seen := byName[server.Name]; !seen {
			order = append(order, server.Name)
		}
		byName[server.Name] = server
	}

	churn := 0

	// Removal pass: drop registrations the control plane no longer wants
	for _, reg := range r.table.Registrations() {
		if _, wanted := byName[reg.Name]; wanted {
			continue
		}
		r.table.Unregister(reg.Name)
		r.table.RemoveFromAttemptOrder(reg.Name)
		churn++
		logger.Info("Unregistered backend", map[string]interface{}{
			"server":  reg.Name,
			"address": reg.Address,
		})
		r.publish(events.EventServerUnregistered, reg.Name, map[string]interface{}{
			"address": reg.Address,
		})
	}

	// Forced-host pass: rebuild the host buckets from scratch, never
	// merged with the previous cycle's map
	forcedHosts := make(map[string][]string)
	for _, name := range order {
		if host := byName[name].ForcedHost; host != "" {
			forcedHosts[host] = append(forcedHosts[host], name)
		}
	}

	// Addition pass: register newcomers at the game port. Existing
	// registrations are left untouched, so an address change for a
	// known name only lands once the name leaves and comes back.
	for _, name := range order {
		if _, exists := r.table.Lookup(name); exists {
			continue
		}
		address := fmt.Sprintf("%s:%d", byName[name].Address, topology.GamePort)
		r.table.Register(routing.Registration{Name: name, Address: address})
		churn++
		logger.Info("Registered backend", map[string]interface{}{
			"server":  name,
			"address": address,
		})
		r.publish(events.EventServerRegistered, name, map[string]interface{}{
			"address": address,
		})
	}

	// Ordering pass: priority ascending, no-priority entries last,
	// encounter order breaking ties. Replaces the old order wholesale.
	sort.SliceStable(order, func(i, j int) bool {
		return priorityLess(byName[order[i]], byName[order[j]])
	})
	r.table.SetAttemptOrder(order)

	r.table.SetForcedHosts(forcedHosts)

	monitoring.ReconcileChurn.Set(float64(churn))
	monitoring.RegisteredBackends.Set(float64(len(byName)))

	return churn
}

func (r *Reconciler) publish(eventType events.Type, server string, data map[string]interface{}) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{
		Type:   eventType,
		Source: "reconciler",
		Server: server,
		Data:   data,
	})
}

// priorityLess orders backends for connection attempts: any priority
// beats none, lower values go first, everything else is a tie.
func priorityLess(a, b topology.DesiredServer) bool {
	if a.Priority == nil {
		return false
	}
	if b.Priority == nil {
		return true
	}
	return *a.Priority < *b.Priority
}
