package sim

import (
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
	"github.com/shopspring/decimal"
)

type Phase string

const (
	PhaseFlat       Phase = "flat"
	PhaseInPosition Phase = "in_position"
)

type Action string

const (
	ActionOpened   Action = "opened"
	ActionClosed   Action = "closed"
	ActionRejected Action = "rejected"
)

// Notice is a transient message shown after a rejected order.
type Notice struct {
	Reason  risk.Reason `json:"reason"`
	Message string      `json:"message"`
	Expires time.Time   `json:"expires"`
}

// State is a point-in-time copy of the session. It shares nothing with the
// session and is safe to hand to other goroutines.
type State struct {
	SessionID    string                `json:"session_id"`
	Phase        Phase                 `json:"phase"`
	Balance      decimal.Decimal       `json:"balance"`
	Equity       decimal.Decimal       `json:"equity"`
	CurrentPrice decimal.Decimal       `json:"current_price"`
	Position     *Position             `json:"position"`
	UnrealizedPL decimal.Decimal       `json:"unrealized_pl"`
	Candles      []market.Candle       `json:"candles"`
	RecentTrades []journal.TradeRecord `json:"recent_trades"`
	Notice       *Notice               `json:"notice,omitempty"`
	Time         time.Time             `json:"time"`
}

// OrderResult reports what an order did. Exactly one of Position, Trade and
// Rejection is set, matching Action.
type OrderResult struct {
	Action    Action          `json:"action"`
	Position  *Position       `json:"position,omitempty"`
	Trade     *Trade          `json:"trade,omitempty"`
	Rejection *risk.Rejection `json:"rejection,omitempty"`
	State     State           `json:"state"`
}
