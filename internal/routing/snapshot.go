package routing

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// VelocityView is the Velocity-shaped rendering of the routing table:
// the [servers] map, its try order, and the [forced-hosts] section.
// It is what operators diff against a proxy's velocity.toml.
type VelocityView struct {
	Servers     map[string]string   `toml:"servers" json:"servers"`
	Try         []string            `toml:"try" json:"try"`
	ForcedHosts map[string][]string `toml:"forced-hosts" json:"forced_hosts"`
}

// Snapshot captures the table's current state as a VelocityView
func Snapshot(t Table) VelocityView {
	regs := t.Registrations()
	servers := make(map[string]string, len(regs))
	for _, reg := range regs {
		servers[reg.Name] = reg.Address
	}

	return VelocityView{
		Servers:     servers,
		Try:         t.AttemptOrder(),
		ForcedHosts: t.ForcedHosts(),
	}
}

// TOML renders the view as Velocity-style TOML
func (v VelocityView) TOML() (string, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to render velocity config: %w", err)
	}
	return string(data), nil
}
