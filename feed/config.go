package feed

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

// Config controls the synthetic price series.
type Config struct {
	SeedPrice      float64       // price the lookback window ends at
	Lookback       int           // historical candles generated by Initialize
	WindowSize     int           // maximum candles kept in the sliding window
	CandleInterval time.Duration // wall-clock bucket of one candle

	NoisePct      float64 // historical candle noise as a fraction of price
	MinVolatility float64 // absolute floor for noise and tick steps
	IdleStepPct   float64 // tick amplitude while flat
	ActiveStepPct float64 // tick amplitude while a position is open
	PositionBias  float64 // drift toward the open position's side, in step units

	ProjectionTrend float64 // trend factor used by Project

	// Seed for the PRNG; zero seeds from the clock.
	Seed int64
}

// DefaultConfig mirrors the paper trading screen: a BTC-like seed price and a
// 100 candle window.
func DefaultConfig() Config {
	return Config{
		SeedPrice:       48235.50,
		Lookback:        100,
		WindowSize:      100,
		CandleInterval:  time.Minute,
		NoisePct:        0.02,
		MinVolatility:   0.01,
		IdleStepPct:     0.002,
		ActiveStepPct:   0.004,
		PositionBias:    0.1,
		ProjectionTrend: 0.15,
	}
}

// Validate rejects settings that would produce a degenerate series.
func (c Config) Validate() error {
	minPrice, _ := market.MinPrice.Float64()

	switch {
	case math.IsNaN(c.SeedPrice) || math.IsInf(c.SeedPrice, 0):
		return invalid("seed price must be a finite number")
	case c.SeedPrice < minPrice:
		return invalid(fmt.Sprintf("seed price %v must be at least %v", c.SeedPrice, minPrice))
	case c.WindowSize <= 0:
		return invalid("window size must be positive")
	case c.Lookback <= 0:
		return invalid("lookback must be positive")
	case c.Lookback > c.WindowSize:
		return invalid(fmt.Sprintf("lookback %d exceeds window size %d", c.Lookback, c.WindowSize))
	case c.CandleInterval <= 0:
		return invalid("candle interval must be positive")
	case !finite(c.NoisePct, c.MinVolatility, c.IdleStepPct, c.ActiveStepPct, c.PositionBias, c.ProjectionTrend):
		return invalid("noise, step, bias and trend settings must be finite numbers")
	case c.NoisePct < 0 || c.MinVolatility < 0:
		return invalid("noise settings must not be negative")
	case c.IdleStepPct < 0 || c.ActiveStepPct < 0:
		return invalid("step settings must not be negative")
	case math.Abs(c.PositionBias) >= 0.5:
		return invalid("position bias must be within (-0.5, 0.5)")
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func invalid(msg string) error {
	return fmt.Errorf("%w: feed: %s", market.ErrInvalidConfiguration, msg)
}
