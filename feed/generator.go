package feed

import (
	"math"
	"math/rand"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// Generator produces a plausible-looking price series without any external
// data source. It is not safe for concurrent use; the session serializes
// access to it.
type Generator struct {
	cfg     Config
	rng     *rand.Rand
	candles []market.Candle
}

// New validates cfg and returns a generator with an empty window.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		candles: make([]market.Candle, 0, cfg.WindowSize),
	}, nil
}

func (g *Generator) Config() Config { return g.cfg }

// Initialize replaces the window with Lookback historical candles whose
// newest bucket contains now and whose newest close is the seed price.
func (g *Generator) Initialize(now time.Time) []market.Candle {
	interval := g.cfg.CandleInterval
	bucket := now.Truncate(interval)
	n := g.cfg.Lookback

	g.candles = g.candles[:0]
	for i := n - 1; i >= 0; i-- {
		base := g.cfg.SeedPrice * (1 + math.Sin(float64(i)*0.1)*0.1)
		vol := g.volatility(base, g.cfg.NoisePct)
		g.candles = append(g.candles, g.noisyCandle(bucket.Add(-time.Duration(i)*interval), base, vol))
	}

	last := &g.candles[len(g.candles)-1]
	seed := market.NormalizePrice(g.cfg.SeedPrice)
	last.Close = seed
	last.High = decimal.Max(last.High, seed)
	last.Low = decimal.Min(last.Low, seed)

	return g.Candles()
}

// Tick applies one random step to current. The step is wider while a position
// is open and drifts toward the position's side.
func (g *Generator) Tick(current decimal.Decimal, open bool, dir market.Direction) decimal.Decimal {
	cur, _ := current.Float64()

	pct := g.cfg.IdleStepPct
	bias := 0.0
	if open {
		pct = g.cfg.ActiveStepPct
		bias = g.cfg.PositionBias * float64(dir.Sign())
	}

	amp := g.volatility(cur, pct)
	step := amp * (g.rng.Float64() - 0.5 + bias)
	return market.NormalizePrice(cur + step)
}

// AppendOrUpdate folds price into the window. When now falls into a later
// bucket than the newest candle, that candle is sealed and a new one opened,
// evicting the oldest once the window is full. It reports whether a new
// candle was opened.
func (g *Generator) AppendOrUpdate(price decimal.Decimal, now time.Time) bool {
	bucket := now.Truncate(g.cfg.CandleInterval)

	if len(g.candles) == 0 {
		g.candles = append(g.candles, market.NewCandle(bucket, price))
		return true
	}

	last := &g.candles[len(g.candles)-1]
	if !bucket.After(last.Time) {
		last.Update(price)
		return false
	}

	next := market.NewCandle(bucket, last.Close)
	next.Update(price)

	if len(g.candles) >= g.cfg.WindowSize {
		copy(g.candles, g.candles[1:])
		g.candles = g.candles[:len(g.candles)-1]
	}
	g.candles = append(g.candles, next)
	return true
}

// Candles returns a copy of the window, oldest first.
func (g *Generator) Candles() []market.Candle {
	out := make([]market.Candle, len(g.candles))
	copy(out, g.candles)
	return out
}

// Last returns the newest close, or zero when the window is empty.
func (g *Generator) Last() decimal.Decimal {
	if len(g.candles) == 0 {
		return decimal.Zero
	}
	return g.candles[len(g.candles)-1].Close
}

func (g *Generator) volatility(price, pct float64) float64 {
	return math.Max(price*pct, g.cfg.MinVolatility)
}

// noisyCandle builds one OHLC bar around base. Rounding and flooring are
// monotonic, so high >= open,close >= low survives them.
func (g *Generator) noisyCandle(t time.Time, base, vol float64) market.Candle {
	return market.Candle{
		Time:  t,
		Open:  market.NormalizePrice(base - vol*g.rng.Float64()),
		High:  market.NormalizePrice(base + vol),
		Low:   market.NormalizePrice(base - vol),
		Close: market.NormalizePrice(base + vol*g.rng.Float64()),
	}
}
