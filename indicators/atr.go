package indicators

import (
	"math"

	"github.com/rustyeddy/papertrade/market"
)

// TrueRange is the largest of the candle's range and its gaps from the
// previous close.
func TrueRange(cur, prev market.Candle) float64 {
	high := cur.High.InexactFloat64()
	low := cur.Low.InexactFloat64()
	prevClose := prev.Close.InexactFloat64()

	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

// ATR is the Wilder-smoothed average true range. It needs period+1 candles.
func ATR(candles []market.Candle, period int) (float64, error) {
	if err := checkPeriod(len(candles), period, period+1); err != nil {
		return 0, err
	}

	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		trs = append(trs, TrueRange(candles[i], candles[i-1]))
	}

	atr := 0.0
	for _, tr := range trs[:period] {
		atr += tr
	}
	atr /= float64(period)

	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr, nil
}
