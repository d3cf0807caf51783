// Package discount simulates the effect of a discount on margin, band and the
// sales volume needed to keep monthly gross profit unchanged.
package discount

import (
	"github.com/iwvelando/margin-pricing/pkg/classify"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
	"github.com/iwvelando/margin-pricing/pkg/validation"
)

// Result is the outcome of SimulateDiscount.
//
// BreakevenUnits is nil when the discounted price no longer covers cost, since
// no volume can recover the lost profit. VolumeIncreasePercent is nil in that
// case and also when there were no sales to compare against.
type Result struct {
	NewPrice                   float64          `json:"newPrice"`
	NewMargin                  float64          `json:"newMargin"`
	OriginalMargin             float64          `json:"originalMargin"`
	OriginalClassification     *classify.Result `json:"originalClassification"`
	NewClassification          *classify.Result `json:"newClassification"`
	BandChanged                bool             `json:"bandChanged"`
	OriginalMonthlyProfit      float64          `json:"originalMonthlyProfit"`
	ProfitPerUnitAfterDiscount float64          `json:"profitPerUnitAfterDiscount"`
	LossMaking                 bool             `json:"lossMaking"`
	BreakevenUnits             *float64         `json:"breakevenUnits"`
	VolumeIncreasePercent      *float64         `json:"volumeIncreasePercent"`
}

// SimulateDiscount applies discountPercent to price and reports the new margin
// and band, and how many units per month must sell at the new price to match
// the gross profit of monthlySales units at the original price.
func SimulateDiscount(price, cost, discountPercent, monthlySales float64, table margins.Table) (*Result, error) {
	if err := validation.ValidatePrice(price); err != nil {
		return nil, err
	}
	if err := validation.ValidateCost(cost); err != nil {
		return nil, err
	}
	if err := validation.ValidateDiscountPercent(discountPercent); err != nil {
		return nil, err
	}
	if err := validation.ValidateMonthlySales(monthlySales); err != nil {
		return nil, err
	}

	newPrice := price - mathutil.ApplyPercentage(price, discountPercent)

	original, err := classify.Classify(price, cost, table)
	if err != nil {
		return nil, err
	}
	discounted, err := classify.Classify(newPrice, cost, table)
	if err != nil {
		return nil, err
	}

	result := &Result{
		NewPrice:                   newPrice,
		NewMargin:                  discounted.Margin,
		OriginalMargin:             original.Margin,
		OriginalClassification:     original,
		NewClassification:          discounted,
		BandChanged:                original.Category != discounted.Category,
		OriginalMonthlyProfit:      monthlySales * (price - cost),
		ProfitPerUnitAfterDiscount: newPrice - cost,
	}

	if result.ProfitPerUnitAfterDiscount <= 0 {
		result.LossMaking = true
		return result, nil
	}

	// Without a discount the volume is unchanged; skip the division so the
	// result is exact.
	breakeven, increase := monthlySales, 0.0
	if discountPercent != 0 {
		breakeven = result.OriginalMonthlyProfit / result.ProfitPerUnitAfterDiscount
		if monthlySales > 0 {
			increase = mathutil.CalculatePercentage(breakeven-monthlySales, monthlySales)
		}
	}
	result.BreakevenUnits = &breakeven
	if monthlySales > 0 {
		result.VolumeIncreasePercent = &increase
	}

	return result, nil
}
