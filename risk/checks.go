package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

type Reason string

const (
	NotANumber          Reason = "NOT_A_NUMBER"
	InsufficientBalance Reason = "INSUFFICIENT_BALANCE"
	ExceedsMaxExposure  Reason = "EXCEEDS_MAX_EXPOSURE"
)

// Rejection explains why an order size was refused. It is a value carried
// in order results, but satisfies error so callers can wrap it.
type Rejection struct {
	Reason Reason `json:"reason"`
	Msg    string `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Msg)
}

type Decision struct {
	Allowed   bool
	Size      decimal.Decimal
	Rejection *Rejection
}

func reject(reason Reason, msg string) Decision {
	return Decision{Rejection: &Rejection{Reason: reason, Msg: msg}}
}

// Evaluate checks a requested position size against the balance. Checks run
// in a fixed order and the first failure wins. Evaluate has no side effects.
func Evaluate(p Policy, requested float64, balance decimal.Decimal) Decision {
	if math.IsNaN(requested) || math.IsInf(requested, 0) || requested <= 0 {
		return reject(NotANumber, "Please enter a valid position size")
	}

	size := decimal.NewFromFloat(requested)
	if size.GreaterThan(balance) {
		return reject(InsufficientBalance, "Insufficient balance")
	}

	if size.GreaterThan(MaxSize(p, balance)) {
		pct := decimal.NewFromFloat(p.MaxExposurePct).Mul(decimal.NewFromInt(100))
		return reject(ExceedsMaxExposure,
			fmt.Sprintf("Position size too large (max %s%% of balance)", pct.String()))
	}

	return Decision{Allowed: true, Size: size}
}
