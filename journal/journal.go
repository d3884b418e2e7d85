package journal

import (
	"errors"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// TradeRecord is the persisted form of a closed trade.
type TradeRecord struct {
	TradeID    string           `json:"trade_id"`
	Direction  market.Direction `json:"direction"`
	Size       decimal.Decimal  `json:"size"`
	EntryPrice decimal.Decimal  `json:"entry_price"`
	ExitPrice  decimal.Decimal  `json:"exit_price"`
	OpenTime   time.Time        `json:"open_time"`
	CloseTime  time.Time        `json:"close_time"`
	RealizedPL decimal.Decimal  `json:"realized_pl"`
	Reason     string           `json:"reason"`
}

// EquitySnapshot is the account marked to the current price.
type EquitySnapshot struct {
	Time       time.Time       `json:"time"`
	Price      decimal.Decimal `json:"price"`
	Balance    decimal.Decimal `json:"balance"`
	Unrealized decimal.Decimal `json:"unrealized"`
	Equity     decimal.Decimal `json:"equity"`
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard drops everything written to it.
var Discard Journal = discard{}

type discard struct{}

func (discard) RecordTrade(TradeRecord) error     { return nil }
func (discard) RecordEquity(EquitySnapshot) error { return nil }
func (discard) Close() error                      { return nil }

// Multi fans every record out to each journal. All sinks are written even
// when one fails; the errors are joined.
func Multi(js ...Journal) Journal {
	out := make(multi, 0, len(js))
	for _, j := range js {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}

type multi []Journal

func (m multi) RecordTrade(t TradeRecord) error {
	var errs []error
	for _, j := range m {
		errs = append(errs, j.RecordTrade(t))
	}
	return errors.Join(errs...)
}

func (m multi) RecordEquity(e EquitySnapshot) error {
	var errs []error
	for _, j := range m {
		errs = append(errs, j.RecordEquity(e))
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, j := range m {
		errs = append(errs, j.Close())
	}
	return errors.Join(errs...)
}
