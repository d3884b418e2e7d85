package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/papertrade/market"
)

// DefaultMaxExposurePct caps a single position at 10% of the balance.
const DefaultMaxExposurePct = 0.10

type Policy struct {
	// Exposure limit as a fraction of the current balance.
	MaxExposurePct float64 `json:"max_exposure_pct" yaml:"max_exposure_pct" toml:"max_exposure_pct"`
}

func DefaultPolicy() Policy {
	return Policy{MaxExposurePct: DefaultMaxExposurePct}
}

func (p Policy) Validate() error {
	// NaN fails every comparison, so it is rejected explicitly.
	if math.IsNaN(p.MaxExposurePct) || p.MaxExposurePct <= 0 || p.MaxExposurePct > 1 {
		return fmt.Errorf("%w: risk: max exposure pct must be in (0, 1], got %v",
			market.ErrInvalidConfiguration, p.MaxExposurePct)
	}
	return nil
}
