// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/margin-pricing/pkg/margins"
)

// ThreeBandRanges returns a small valid table: thin below 20%, healthy up to
// 40%, premium above.
func ThreeBandRanges() []margins.MarginRange {
	return []margins.MarginRange{
		{MinMargin: math.Inf(-1), MaxMargin: 0.2, Label: "thin", Color: "#dc2626"},
		{MinMargin: 0.2, MaxMargin: 0.4, Label: "healthy", Color: "#16a34a"},
		{MinMargin: 0.4, MaxMargin: math.Inf(1), Label: "premium", Color: "#2563eb"},
	}
}

// ThreeBandTable is ThreeBandRanges as a validated table.
func ThreeBandTable() margins.Table {
	return margins.MustTable(ThreeBandRanges())
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 {
	return &v
}
