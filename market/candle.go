package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents OHLC (Open, High, Low, Close) candlestick data for one
// time bucket starting at Time.
type Candle struct {
	Time  time.Time       `json:"time"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// NewCandle opens a candle at price p.
func NewCandle(t time.Time, p decimal.Decimal) Candle {
	return Candle{Time: t, Open: p, High: p, Low: p, Close: p}
}

// Update folds a new price into an in-progress candle.
func (c *Candle) Update(p decimal.Decimal) {
	c.Close = p
	if p.GreaterThan(c.High) {
		c.High = p
	}
	if p.LessThan(c.Low) {
		c.Low = p
	}
}

// Valid reports whether all four prices are positive and High/Low bound
// both Open and Close.
func (c Candle) Valid() bool {
	for _, p := range []decimal.Decimal{c.Open, c.High, c.Low, c.Close} {
		if !p.IsPositive() {
			return false
		}
	}
	if c.High.LessThan(decimal.Max(c.Open, c.Close)) {
		return false
	}
	if c.Low.GreaterThan(decimal.Min(c.Open, c.Close)) {
		return false
	}
	return true
}
