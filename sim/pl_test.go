package sim

import (
	"testing"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dir   market.Direction
		entry string
		mark  string
		size  string
		want  string
	}{
		{"long gain", market.Long, "100", "110", "1000", "100"},
		{"long loss", market.Long, "100", "90", "1000", "-100"},
		{"short gain", market.Short, "100", "90", "1000", "100"},
		{"short loss", market.Short, "100", "110", "1000", "-100"},
		{"flat long", market.Long, "48235.5", "48235.5", "1000", "0"},
		{"flat short", market.Short, "48235.5", "48235.5", "1000", "0"},
		{"zero entry", market.Long, "0", "10", "1000", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := PL(tt.dir, d(tt.entry), d(tt.mark), d(tt.size))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPLShortScenario(t *testing.T) {
	t.Parallel()

	got := PL(market.Short, d("48235.50"), d("47000"), d("1000"))
	f, _ := got.Float64()
	assert.InDelta(t, 25.6139, f, 1e-4)
	assert.Equal(t, "25.61", got.StringFixed(2))
}

func TestPLSymmetry(t *testing.T) {
	t.Parallel()

	entry, mark, size := d("48235.50"), d("48301.17"), d("750")
	long := PL(market.Long, entry, mark, size)
	short := PL(market.Short, entry, mark, size)
	assert.True(t, long.Neg().Equal(short))
}
