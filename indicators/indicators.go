// Package indicators computes moving averages and volatility over a candle
// window. Results are float64; prices go in as decimals.
package indicators

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/papertrade/market"
)

var ErrNotEnoughCandles = errors.New("not enough candles")

// Periods selects the lookback of each indicator in a Summary.
type Periods struct {
	SMA int `json:"sma"`
	EMA int `json:"ema"`
	ATR int `json:"atr"`
}

func DefaultPeriods() Periods {
	return Periods{SMA: 20, EMA: 20, ATR: 14}
}

// Summary is the latest value of each indicator. A value is nil when the
// window is shorter than its period.
type Summary struct {
	Periods Periods  `json:"periods"`
	SMA     *float64 `json:"sma"`
	EMA     *float64 `json:"ema"`
	ATR     *float64 `json:"atr"`
}

// Compute evaluates every indicator in p over candles.
func Compute(candles []market.Candle, p Periods) (Summary, error) {
	if p.SMA <= 0 || p.EMA <= 0 || p.ATR <= 0 {
		return Summary{}, fmt.Errorf("periods must be positive, got %+v", p)
	}

	s := Summary{Periods: p}
	if v, err := MA(candles, p.SMA); err == nil {
		s.SMA = &v
	}
	if v, err := EMA(candles, p.EMA); err == nil {
		s.EMA = &v
	}
	if v, err := ATR(candles, p.ATR); err == nil {
		s.ATR = &v
	}
	return s, nil
}

func checkPeriod(n, period, need int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if n < need {
		return fmt.Errorf("%w: need %d, got %d", ErrNotEnoughCandles, need, n)
	}
	return nil
}
