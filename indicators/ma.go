package indicators

import "github.com/rustyeddy/papertrade/market"

// MA is the simple moving average of the last period closes.
func MA(candles []market.Candle, period int) (float64, error) {
	if err := checkPeriod(len(candles), period, period); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close.InexactFloat64()
	}
	return sum / float64(period), nil
}

// EMA is the exponential moving average over all closes, seeded with the
// simple average of the first period.
func EMA(candles []market.Candle, period int) (float64, error) {
	if err := checkPeriod(len(candles), period, period); err != nil {
		return 0, err
	}

	multiplier := 2.0 / float64(period+1)

	ema := 0.0
	for _, c := range candles[:period] {
		ema += c.Close.InexactFloat64()
	}
	ema /= float64(period)

	for _, c := range candles[period:] {
		ema = (c.Close.InexactFloat64()-ema)*multiplier + ema
	}
	return ema, nil
}
