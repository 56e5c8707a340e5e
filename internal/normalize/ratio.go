package normalize

import (
	"math"

	"hotel_value/internal/domain"
)

// RatioScale expresses the value ratio as review points per 1000 currency units.
const RatioScale = 1000.0

// ValueRatio divides the review score by the nightly price (total price when no nightly price
// was scraped). It returns nil when either side is missing or the price is not positive.
func ValueRatio(h domain.RawHotel) *float64 {
	score := ParseNumeric(h.ReviewScore)
	if score == nil {
		return nil
	}
	price := resolvePrice(h)
	if price == nil {
		return nil
	}
	r := *score / *price * RatioScale
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}

func resolvePrice(h domain.RawHotel) *float64 {
	if p := ParsePrice(h.DailyPrice); p != nil && *p > 0 {
		return p
	}
	if p := ParsePrice(h.Price); p != nil && *p > 0 {
		return p
	}
	return nil
}
