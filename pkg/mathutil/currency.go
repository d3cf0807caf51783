// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, half away from zero, i.e. to
// represent real currency.
func Round(val float64) float64 {
	return roundTo(val, constants.DecimalPlaces)
}

// RoundMargin resolves a margin fraction to basis points, half away from zero.
func RoundMargin(val float64) float64 {
	return roundTo(val, constants.MarginDecimalPlaces)
}

// CeilCurrency rounds a value up to the next cent. Values that are only above
// a whole cent by floating point noise are not bumped.
func CeilCurrency(val float64) float64 {
	rounded := Round(val)
	if rounded >= val || WithinTolerance(rounded, val, constants.FloatNoiseTolerance) {
		return rounded
	}
	return decimal.NewFromFloat(val).RoundCeil(constants.DecimalPlaces).InexactFloat64()
}

func roundTo(val float64, places int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}
