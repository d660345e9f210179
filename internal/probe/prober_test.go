package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/craftmesh/proxysync/internal/routing"
)

func TestParsePlayerCount(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected int
		ok       bool
	}{
		{
			name:     "vanilla format",
			response: "There are 3 of a max of 20 players online:",
			expected: 3,
			ok:       true,
		},
		{
			name:     "older format without of",
			response: "There are 7 of a max 50 players online",
			expected: 7,
			ok:       true,
		},
		{
			name:     "slash format",
			response: "There are 12/100 players online:",
			expected: 12,
			ok:       true,
		},
		{
			name:     "color codes stripped",
			response: "§aThere are §e5§a of a max of §e20§a players online",
			expected: 5,
			ok:       true,
		},
		{
			name:     "empty server",
			response: "There are 0 of a max of 20 players online:",
			expected: 0,
			ok:       true,
		},
		{
			name:     "garbage",
			response: "Unknown command",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players, ok := parsePlayerCount(tt.response)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, players)
			}
		})
	}
}

func TestProberStartStopWithEmptyTable(t *testing.T) {
	prober := NewProber(routing.NewMemoryTable(), "", 25575, 10*time.Millisecond)

	prober.Start()
	time.Sleep(30 * time.Millisecond)
	prober.Stop() // must not hang or panic
}
