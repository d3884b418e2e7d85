package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// direct submits straight to the session without a running loop.
type direct struct{ s *sim.Session }

func (d direct) Submit(ctx context.Context, dir market.Direction, size float64) (sim.OrderResult, error) {
	return d.s.SubmitOrder(ctx, dir, size)
}

func newConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	cfg := sim.DefaultConfig()
	cfg.Feed.Seed = 5
	s, err := sim.NewSession(cfg, nil, logrus.NewEntry(logger))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var out bytes.Buffer
	return &console{sess: s, orders: direct{s}, out: &out}, &out
}

func TestConsoleTradeCycle(t *testing.T) {
	c, out := newConsole(t)
	ctx := context.Background()

	run := func(line string) string {
		out.Reset()
		more, err := c.exec(ctx, line)
		require.NoError(t, err)
		assert.True(t, more)
		return out.String()
	}

	assert.Contains(t, run("long 1000"), "✓ Opened LONG 1000.00 @ 48235.50")
	status := run("status")
	assert.Contains(t, status, "Position: LONG 1000.00 @ 48235.50")
	assert.Contains(t, status, "Exposure: 10.00% of balance")
	assert.Contains(t, run("close"), "✓ Closed LONG 1000.00 @ 48235.50  P/L: 0.00  Balance: $10000.00")
	assert.Contains(t, run("close"), "No open position")
	assert.Contains(t, run("status"), "Position: none")

	got := run("trades")
	assert.Contains(t, got, "CLOSED")
	assert.Equal(t, 1, strings.Count(got, "LONG"))
}

func TestConsoleRejectionsAndUsage(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"long abc", "✗ Rejected: Please enter a valid position size"},
		{"SELL 0", "✗ Rejected: Please enter a valid position size"},
		{"buy 50000", "✗ Rejected: Insufficient balance"},
		{"short 2000", "✗ Rejected: Position size too large (max 10% of balance)"},
		{"short", "usage: short <size>"},
		{"frobnicate", `unknown command "frobnicate"`},
		{"help", "long <size>"},
		{"trades", "No closed trades"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, out := newConsole(t)
			more, err := c.exec(context.Background(), tt.line)
			require.NoError(t, err)
			assert.True(t, more)
			assert.Contains(t, out.String(), tt.want)
			assert.Nil(t, c.sess.Snapshot().Position)
		})
	}
}

func TestConsoleQuit(t *testing.T) {
	for _, line := range []string{"quit", "exit", "Q"} {
		c, _ := newConsole(t)
		more, err := c.exec(context.Background(), line)
		require.NoError(t, err)
		assert.False(t, more, line)
	}
}

func TestConsoleServeStopsAtQuit(t *testing.T) {
	c, out := newConsole(t)

	in := strings.NewReader("long 100\nquit\nshort 100\n")
	require.NoError(t, c.serve(context.Background(), in))

	assert.Contains(t, out.String(), "✓ Opened LONG")
	assert.NotContains(t, out.String(), "SHORT")
	assert.True(t, c.sess.InPosition())
}

func TestConsoleServeStopsOnCancel(t *testing.T) {
	c, _ := newConsole(t)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.serve(ctx, blockingReader{}) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) { select {} }

func TestConsoleThroughLoop(t *testing.T) {
	c, out := newConsole(t)

	ctx, cancel := context.WithCancel(context.Background())
	loop := sim.NewLoop(c.sess)
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	c.orders = loop

	_, err := c.exec(ctx, "short 250")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Opened SHORT 250.00")
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)

	start, end, err := dayBounds(loc, "2024-01-15")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = dayBounds(loc, "15/01/2024")
	assert.Error(t, err)
}

func TestParseStyle(t *testing.T) {
	s, err := parseStyle("community")
	require.NoError(t, err)
	assert.Equal(t, "community", s.String())

	_, err = parseStyle("crowd")
	assert.Error(t, err)
}
