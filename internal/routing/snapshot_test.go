package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable() *MemoryTable {
	table := NewMemoryTable()
	table.Register(Registration{Name: "lobby", Address: "10.0.0.1:25565"})
	table.Register(Registration{Name: "survival", Address: "10.0.0.2:25565"})
	table.SetAttemptOrder([]string{"lobby", "survival"})
	table.SetForcedHosts(map[string][]string{
		"play.example.com": {"lobby", "survival"},
	})
	return table
}

func TestSnapshot(t *testing.T) {
	view := Snapshot(buildTable())

	assert.Equal(t, map[string]string{
		"lobby":    "10.0.0.1:25565",
		"survival": "10.0.0.2:25565",
	}, view.Servers)
	assert.Equal(t, []string{"lobby", "survival"}, view.Try)
	assert.Equal(t, []string{"lobby", "survival"}, view.ForcedHosts["play.example.com"])
}

func TestSnapshotTOML(t *testing.T) {
	rendered, err := Snapshot(buildTable()).TOML()
	require.NoError(t, err)

	assert.Contains(t, rendered, "[servers]")
	assert.Contains(t, rendered, "lobby = '10.0.0.1:25565'")
	assert.Contains(t, rendered, "[forced-hosts]")
	assert.Contains(t, rendered, "'play.example.com'")
}

func TestSnapshotOfEmptyTable(t *testing.T) {
	view := Snapshot(NewMemoryTable())

	assert.Empty(t, view.Servers)
	assert.Empty(t, view.Try)
	assert.Empty(t, view.ForcedHosts)
}
