// Package pricing derives sale prices from a cost and a target margin, and the
// price ladder of a margin table for that cost.
package pricing

import (
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
	"github.com/iwvelando/margin-pricing/pkg/validation"
)

// BandBoundary is one rung of the price ladder: a band and the cent-rounded
// prices that bound it for the cost.
type BandBoundary struct {
	Range margins.MarginRange `json:"range"`
	margins.PriceBounds
}

// FullPricing is the result of CalculateFullPricing. Monetary fields are
// rounded to cents.
type FullPricing struct {
	Cost                 float64        `json:"cost"`
	TargetMargin         float64        `json:"targetMargin"`
	RecommendedPrice     float64        `json:"recommendedPrice"`
	MarkupOnCost         float64        `json:"markupOnCost"`
	Category             string         `json:"category"`
	Color                string         `json:"color"`
	MarginBandBoundaries []BandBoundary `json:"marginBandBoundaries"`
}

// PriceForMargin returns the exact price at which cost yields margin, using
// margin = (price - cost) / price.
func PriceForMargin(cost, margin float64) (float64, error) {
	if err := validation.ValidateCost(cost); err != nil {
		return 0, err
	}
	if err := validation.ValidateTargetMargin(margin); err != nil {
		return 0, err
	}
	return margins.PriceAtMargin(cost, margin), nil
}

// CalculateFullPricing recommends a price for cost at targetMargin and lists
// the price bounds of every band in table.
//
// The recommended price is rounded to cents but never below the exact price,
// so the requested margin is always met.
func CalculateFullPricing(cost, targetMargin float64, table margins.Table) (*FullPricing, error) {
	exact, err := PriceForMargin(cost, targetMargin)
	if err != nil {
		return nil, err
	}
	if table.IsZero() {
		return nil, &margins.TableError{Kind: margins.TableEmpty, Index: -1}
	}

	recommended := mathutil.CeilCurrency(exact)
	band, _, err := table.FindRangeForPrice(recommended, cost)
	if err != nil {
		return nil, err
	}

	ranges := table.Ranges()
	boundaries := make([]BandBoundary, 0, len(ranges))
	for _, r := range ranges {
		boundaries = append(boundaries, BandBoundary{
			Range:       r,
			PriceBounds: margins.RoundedPriceBoundsForRange(r, cost),
		})
	}

	return &FullPricing{
		Cost:                 cost,
		TargetMargin:         targetMargin,
		RecommendedPrice:     recommended,
		MarkupOnCost:         mathutil.RoundMargin((recommended - cost) / cost),
		Category:             band.Label,
		Color:                band.Color,
		MarginBandBoundaries: boundaries,
	}, nil
}
