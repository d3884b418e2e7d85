package risk

import "github.com/shopspring/decimal"

// MaxSize is the largest position the policy accepts against balance.
func MaxSize(p Policy, balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return balance.Mul(decimal.NewFromFloat(p.MaxExposurePct))
}

// ExposurePct returns size as a fraction of balance, or zero when the
// balance is not positive.
func ExposurePct(size, balance decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}
	return size.Div(balance)
}
