package journal

import (
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleTrade(id string, pl string, closed time.Time) TradeRecord {
	return TradeRecord{
		TradeID:    id,
		Direction:  market.Long,
		Size:       d("1000"),
		EntryPrice: d("100"),
		ExitPrice:  d("100").Add(d(pl).Div(d("10"))),
		OpenTime:   closed.Add(-5 * time.Minute),
		CloseTime:  closed,
		RealizedPL: d(pl),
		Reason:     "ManualClose",
	}
}
