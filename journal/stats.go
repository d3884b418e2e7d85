package journal

import "github.com/shopspring/decimal"

// Stats summarizes a set of closed trades.
type Stats struct {
	Trades int `json:"trades"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`

	NetPL       decimal.Decimal `json:"net_pl"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	GrossLoss   decimal.Decimal `json:"gross_loss"`

	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"` // 0 when there are no losses
}

// Summarize computes Stats over trades. Break-even trades count toward the
// total only.
func Summarize(trades []TradeRecord) Stats {
	s := Stats{Trades: len(trades)}
	for _, t := range trades {
		s.NetPL = s.NetPL.Add(t.RealizedPL)
		switch t.RealizedPL.Sign() {
		case 1:
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(t.RealizedPL)
		case -1:
			s.Losses++
			s.GrossLoss = s.GrossLoss.Add(t.RealizedPL.Abs())
		}
	}

	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades)
	}
	if s.GrossLoss.IsPositive() {
		s.ProfitFactor, _ = s.GrossProfit.Div(s.GrossLoss).Float64()
	}
	return s
}
