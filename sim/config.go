package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/papertrade/feed"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
)

type Config struct {
	StartingBalance float64
	Risk            risk.Policy

	// Tick cadence while a position is open and while flat.
	ActiveInterval time.Duration
	IdleInterval   time.Duration

	// RecentTrades is how many trades a State carries.
	RecentTrades int

	// NoticeTTL is how long a rejection notice stays in the State.
	NoticeTTL time.Duration

	Feed feed.Config
}

func DefaultConfig() Config {
	return Config{
		StartingBalance: 10000,
		Risk:            risk.DefaultPolicy(),
		ActiveInterval:  time.Second,
		IdleInterval:    2 * time.Second,
		RecentTrades:    5,
		NoticeTTL:       3 * time.Second,
		Feed:            feed.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.StartingBalance) || math.IsInf(c.StartingBalance, 0) || c.StartingBalance <= 0 {
		return invalid("starting balance must be positive, got %v", c.StartingBalance)
	}
	if c.ActiveInterval <= 0 || c.IdleInterval <= 0 {
		return invalid("tick intervals must be positive, got active=%s idle=%s", c.ActiveInterval, c.IdleInterval)
	}
	if c.RecentTrades <= 0 {
		return invalid("recent trades must be positive, got %d", c.RecentTrades)
	}
	if c.NoticeTTL < 0 {
		return invalid("notice ttl must not be negative, got %s", c.NoticeTTL)
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	return c.Feed.Validate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: session: %s", market.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
