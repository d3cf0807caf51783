// Package classify places an existing price into a margin band.
package classify

import (
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/validation"
)

// Result describes where a price sits in a margin table.
//
// Margin is the exact (price - cost) / price. NextThresholdPrice is the lowest
// whole-cent price that leaves the current band, or nil when the price is
// already in the top band. NextCategory names the band that price lands in,
// which is the adjacent band unless cost is below a cent.
type Result struct {
	Category           string   `json:"category"`
	Color              string   `json:"color"`
	Margin             float64  `json:"margin"`
	NextThresholdPrice *float64 `json:"nextThresholdPrice"`
	NextCategory       string   `json:"nextCategory,omitempty"`
	LossMaking         bool     `json:"lossMaking"`
}

// Margin computes (price - cost) / price. A price at or below cost gives a
// margin at or below zero, which is a valid result.
func Margin(price, cost float64) (float64, error) {
	if err := validation.ValidatePrice(price); err != nil {
		return 0, err
	}
	if err := validation.ValidateCost(cost); err != nil {
		return 0, err
	}
	return margins.MarginAtPrice(price, cost), nil
}

// Classify computes the margin of price over cost and finds its band in table.
func Classify(price, cost float64, table margins.Table) (*Result, error) {
	margin, err := Margin(price, cost)
	if err != nil {
		return nil, err
	}

	band, _, err := table.FindRangeForPrice(price, cost)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Category:   band.Label,
		Color:      band.Color,
		Margin:     margin,
		LossMaking: price <= cost,
	}

	if !band.IsTop() {
		threshold := margins.BoundaryPrice(cost, band.MaxMargin)
		next, _, err := table.FindRangeForPrice(threshold, cost)
		if err != nil {
			return nil, err
		}
		result.NextThresholdPrice = &threshold
		result.NextCategory = next.Label
	}

	return result, nil
}
