package feed

import (
	"math"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// ProjectionStyle selects the oscillation laid over the projected trend.
type ProjectionStyle int

const (
	// ModelProjection is the smoother, tighter forecast.
	ModelProjection ProjectionStyle = iota
	// CommunityProjection follows the same trend with a different wave and
	// wider candles.
	CommunityProjection
)

func (s ProjectionStyle) String() string {
	if s == CommunityProjection {
		return "community"
	}
	return "model"
}

// Project extends the series forward from last for periods buckets starting
// at start. The projection is illustrative only; it never feeds back into the
// window or the live price.
func (g *Generator) Project(last decimal.Decimal, start time.Time, periods int, style ProjectionStyle) []market.Candle {
	if periods <= 0 {
		return nil
	}

	lastF, _ := last.Float64()
	interval := g.cfg.CandleInterval
	out := make([]market.Candle, 0, periods)

	for i := 0; i < periods; i++ {
		x := float64(i)
		var osc, noise float64
		switch style {
		case CommunityProjection:
			osc = math.Cos(x*0.15) * 0.03
			noise = 0.02
		default:
			osc = math.Sin(x*0.1) * 0.05
			noise = 0.015
		}

		base := lastF * (1 + (x/float64(periods))*g.cfg.ProjectionTrend + osc)
		vol := g.volatility(base, noise)
		out = append(out, g.noisyCandle(start.Add(time.Duration(i)*interval), base, vol))
	}
	return out
}
