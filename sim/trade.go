package sim

import (
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// ReasonManualClose marks a trade closed by an order.
const ReasonManualClose = "ManualClose"

// Trade is a closed position. It is created once and never modified.
type Trade struct {
	ID         string           `json:"id"`
	Direction  market.Direction `json:"direction"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  decimal.Decimal  `json:"exit_price"`
	Size       decimal.Decimal  `json:"size"`
	RealizedPL decimal.Decimal  `json:"realized_pl"`
	OpenedAt   time.Time        `json:"opened_at"`
	ClosedAt   time.Time        `json:"closed_at"`
	Reason     string           `json:"reason"`
}

func (t Trade) Record() journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:    t.ID,
		Direction:  t.Direction,
		Size:       t.Size,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		OpenTime:   t.OpenedAt,
		CloseTime:  t.ClosedAt,
		RealizedPL: t.RealizedPL,
		Reason:     t.Reason,
	}
}
