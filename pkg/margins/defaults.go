package margins

import "math"

// DefaultRangesVersion identifies the published default table. Bump it
// whenever a bound, label or color below changes.
const DefaultRangesVersion = "2024.1"

// DefaultMarginRanges returns the default table used when a tenant has not
// configured one:
//
//	(-Inf, 0)     loss
//	[0, 0.15)     low
//	[0.15, 0.25)  fair
//	[0.25, 0.35)  healthy
//	[0.35, +Inf)  premium
func DefaultMarginRanges() []MarginRange {
	return []MarginRange{
		{MinMargin: math.Inf(-1), MaxMargin: 0, Label: "loss", Color: "#7f1d1d"},
		{MinMargin: 0, MaxMargin: 0.15, Label: "low", Color: "#dc2626"},
		{MinMargin: 0.15, MaxMargin: 0.25, Label: "fair", Color: "#f59e0b"},
		{MinMargin: 0.25, MaxMargin: 0.35, Label: "healthy", Color: "#16a34a"},
		{MinMargin: 0.35, MaxMargin: math.Inf(1), Label: "premium", Color: "#2563eb"},
	}
}

// DefaultTable is DefaultMarginRanges as a validated table.
var DefaultTable = MustTable(DefaultMarginRanges())
