package sim

import (
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// PL is the profit or loss of size units of notional entered at entry and
// marked at mark: (mark-entry)*size/entry for a long, the negation for a
// short. The same function yields unrealized and realized P&L.
func PL(dir market.Direction, entry, mark, size decimal.Decimal) decimal.Decimal {
	if entry.IsZero() {
		return decimal.Zero
	}
	pl := mark.Sub(entry).Mul(size).Div(entry)
	if dir == market.Short {
		return pl.Neg()
	}
	return pl
}
