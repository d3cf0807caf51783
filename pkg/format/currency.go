// Package format renders prices, margins and band intervals as display
// strings.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
)

// NotApplicable is shown in place of an absent value.
const NotApplicable = "n/a"

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	rounded := mathutil.Round(amount)
	formatted := formatPositiveCurrency(math.Abs(rounded))
	if rounded < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// OptionalCurrency formats amount, or returns NotApplicable when it is nil.
func OptionalCurrency(amount *float64) string {
	if amount == nil {
		return NotApplicable
	}
	return Currency(*amount)
}

// Percent renders a fraction as a percentage with two decimals (0.25 -> "25.00%").
// Infinite fractions render as "-inf" or "+inf".
func Percent(fraction float64) string {
	switch {
	case math.IsInf(fraction, -1):
		return "-inf"
	case math.IsInf(fraction, 1):
		return "+inf"
	}
	return fmt.Sprintf("%.2f%%", mathutil.Round(fraction*constants.PercentageMultiplier))
}

// Interval renders a band's margins in half-open notation, e.g. "[15.00%, 25.00%)".
func Interval(r margins.MarginRange) string {
	open := "["
	if math.IsInf(r.MinMargin, -1) {
		open = "("
	}
	return open + Percent(r.MinMargin) + ", " + Percent(r.MaxMargin) + ")"
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
