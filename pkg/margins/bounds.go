package margins

import (
	"math"

	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
)

// minQuotablePrice is the lowest positive price in whole cents.
const minQuotablePrice = 0.01

// PriceBounds expresses a range's margin bounds as prices for one cost.
// MaxPrice is nil for the top range.
type PriceBounds struct {
	MinPrice float64  `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

// PriceAtMargin inverts margin = (price - cost) / price. A margin of -Inf maps
// to a price of zero.
func PriceAtMargin(cost, margin float64) float64 {
	return cost / (1 - margin)
}

// MarginAtPrice computes (price - cost) / price.
func MarginAtPrice(price, cost float64) float64 {
	return (price - cost) / price
}

// PriceBoundsForRange returns the exact prices at which cost lands on the
// range's bounds.
func PriceBoundsForRange(r MarginRange, cost float64) PriceBounds {
	bounds := PriceBounds{MinPrice: PriceAtMargin(cost, r.MinMargin)}
	if !r.IsTop() {
		maxPrice := PriceAtMargin(cost, r.MaxMargin)
		bounds.MaxPrice = &maxPrice
	}
	return bounds
}

// RoundedPriceBoundsForRange is PriceBoundsForRange with each bound converted
// by BoundaryPrice.
func RoundedPriceBoundsForRange(r MarginRange, cost float64) PriceBounds {
	bounds := PriceBounds{MinPrice: BoundaryPrice(cost, r.MinMargin)}
	if !r.IsTop() {
		maxPrice := BoundaryPrice(cost, r.MaxMargin)
		bounds.MaxPrice = &maxPrice
	}
	return bounds
}

// BoundaryPrice is the lowest whole-cent price at which cost reaches the band
// starting at margin: the exact boundary price rounded half-up, and never
// below one cent. For costs under a cent the first cent can sit several bands
// above margin.
func BoundaryPrice(cost, margin float64) float64 {
	if math.IsInf(margin, -1) {
		return 0
	}
	return math.Max(mathutil.Round(PriceAtMargin(cost, margin)), minQuotablePrice)
}

// ReachesMargin reports whether price over cost counts as reaching the band
// that starts at margin. The exact margin decides, except that a price at or
// above the band's BoundaryPrice also qualifies, which keeps a cent-rounded
// boundary price in the band it was quoted for.
func ReachesMargin(price, cost, margin float64) bool {
	if math.IsInf(margin, -1) {
		return true
	}
	exact := PriceAtMargin(cost, margin)
	return price+constants.FloatNoiseTolerance >= exact || price >= BoundaryPrice(cost, margin)
}
