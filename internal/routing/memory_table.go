package routing

import (
	"sort"
	"sync"
)

// MemoryTable is the daemon's authoritative in-memory routing state.
// Every process boot starts from an empty table; the first successful
// reconcile cycle rebuilds it from the control plane.
type MemoryTable struct {
	servers      map[string]Registration
	attemptOrder []string
	forcedHosts  map[string][]string
	mu           sync.RWMutex
}

// NewMemoryTable creates an empty routing table
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		servers:     make(map[string]Registration),
		forcedHosts: make(map[string][]string),
	}
}

// Registrations returns all registered backends, sorted by name
func (t *MemoryTable) Registrations() []Registration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	regs := make([]Registration, 0, len(t.servers))
	for _, reg := range t.servers {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs
}

// Lookup retrieves a registration by backend name
func (t *MemoryTable) Lookup(name string) (Registration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	reg, exists := t.servers[name]
	return reg, exists
}

// Register adds or updates a backend registration
func (t *MemoryTable) Register(reg Registration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.servers[reg.Name] = reg
}

// Unregister removes a backend by name, reporting whether it existed
func (t *MemoryTable) Unregister(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.servers[name]
	delete(t.servers, name)
	return exists
}

// AttemptOrder returns a copy of the ordered backend names
func (t *MemoryTable) AttemptOrder() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	order := make([]string, len(t.attemptOrder))
	copy(order, t.attemptOrder)
	return order
}

// SetAttemptOrder replaces the attempt order wholesale
func (t *MemoryTable) SetAttemptOrder(names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order := make([]string, len(names))
	copy(order, names)
	t.attemptOrder = order
}

// RemoveFromAttemptOrder strips one name from the attempt order
func (t *MemoryTable) RemoveFromAttemptOrder(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	order := t.attemptOrder[:0]
	for _, n := range t.attemptOrder {
		if n != name {
			order = append(order, n)
		}
	}
	t.attemptOrder = order
}

// ForcedHosts returns a copy of the hostname -> backend-names map
func (t *MemoryTable) ForcedHosts() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hosts := make(map[string][]string, len(t.forcedHosts))
	for host, names := range t.forcedHosts {
		bucket := make([]string, len(names))
		copy(bucket, names)
		hosts[host] = bucket
	}
	return hosts
}

// SetForcedHosts replaces the forced-host map wholesale
func (t *MemoryTable) SetForcedHosts(hosts map[string][]string) {
	fresh := make(map[string][]string, len(hosts))
	for host, names := range hosts {
		bucket := make([]string, len(names))
		copy(bucket, names)
		fresh[host] = bucket
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.forcedHosts = fresh
}
