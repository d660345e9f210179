package probe

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/gorcon/rcon"

	"github.com/craftmesh/proxysync/internal/monitoring"
	"github.com/craftmesh/proxysync/internal/routing"
	"github.com/craftmesh/proxysync/pkg/logger"
)

// Prober checks registered backends over RCON on a fixed interval and
// feeds the per-backend reachable/player gauges. It only ever reads the
// routing table; an unreachable backend is a metrics signal, not a
// reason to touch routing.
type Prober struct {
	table    routing.Table
	password string
	rconPort int
	interval time.Duration
	lastSeen map[string]struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewProber creates a prober for the table's registrations
func NewProber(table routing.Table, password string, rconPort int, interval time.Duration) *Prober {
	return &Prober{
		table:    table,
		password: password,
		rconPort: rconPort,
		interval: interval,
		lastSeen: make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Start begins the probe loop
func (p *Prober) Start() {
	p.wg.Add(1)
	go p.probeLoop()
	logger.Info("Backend probe started", map[string]interface{}{
		"interval":  p.interval.String(),
		"rcon_port": p.rconPort,
	})
}

// Stop stops the probe loop and waits for an in-flight sweep to finish
func (p *Prober) Stop() {
	close(p.stopChan)
	p.wg.Wait()
	logger.Info("Backend probe stopped", nil)
}

func (p *Prober) probeLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probeAll()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.probeAll()
		}
	}
}

// probeAll sweeps every registered backend once and drops gauges for
// backends that left the table since the previous sweep
func (p *Prober) probeAll() {
	seen := make(map[string]struct{})

	for _, reg := range p.table.Registrations() {
		seen[reg.Name] = struct{}{}
		p.probeOne(reg)
	}

	for name := range p.lastSeen {
		if _, still := seen[name]; !still {
			monitoring.ForgetBackend(name)
		}
	}
	p.lastSeen = seen
}

func (p *Prober) probeOne(reg routing.Registration) {
	players, err := p.listPlayers(reg.Address)
	if err != nil {
		monitoring.RecordBackendProbe(reg.Name, false, 0)
		logger.Debug("Backend probe failed", map[string]interface{}{
			"server":  reg.Name,
			"address": reg.Address,
			"error":   err.Error(),
		})
		return
	}

	monitoring.RecordBackendProbe(reg.Name, true, players)
}

// listPlayers runs the list command against the backend's RCON port.
// The registration address carries the game port, so only its host part
// is reused.
func (p *Prober) listPlayers(address string) (int, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}

	conn, err := rcon.Dial(fmt.Sprintf("%s:%d", host, p.rconPort), p.password, rcon.SetDialTimeout(5*time.Second))
	if err != nil {
		return 0, fmt.Errorf("RCON connection failed: %w", err)
	}
	defer conn.Close()

	response, err := conn.Execute("list")
	if err != nil {
		return 0, fmt.Errorf("list command failed: %w", err)
	}

	players, ok := parsePlayerCount(response)
	if !ok {
		return 0, fmt.Errorf("unrecognized list response: %q", response)
	}
	return players, nil
}

var (
	colorCodes    = regexp.MustCompile(`§.`)
	playerPattern = regexp.MustCompile(`There are (\d+) of a max (?:of )?(\d+) players`)
	slashPattern  = regexp.MustCompile(`There are (\d+)/(\d+) players`)
)

// parsePlayerCount extracts the online count from a list response.
// Example: "There are 3 of a max of 20 players online:"
func parsePlayerCount(response string) (int, bool) {
	clean := colorCodes.ReplaceAllString(response, "")

	matches := playerPattern.FindStringSubmatch(clean)
	if len(matches) != 3 {
		matches = slashPattern.FindStringSubmatch(clean)
	}
	if len(matches) == 3 {
		current, _ := strconv.Atoi(matches[1])
		return current, true
	}
	return 0, false
}
