package market

import "github.com/shopspring/decimal"

// PriceDecimals is the number of decimal places every simulated price carries.
const PriceDecimals = 2

// MinPrice is the smallest representable price (one tick).
var MinPrice = decimal.New(1, -PriceDecimals)

// RoundPrice rounds p to PriceDecimals places.
func RoundPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(PriceDecimals)
}

// FloorPrice keeps p at or above MinPrice.
func FloorPrice(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(MinPrice) {
		return MinPrice
	}
	return p
}

// NormalizePrice rounds a raw float to a valid simulated price.
func NormalizePrice(x float64) decimal.Decimal {
	return FloorPrice(RoundPrice(decimal.NewFromFloat(x)))
}
