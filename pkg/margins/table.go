package margins

import (
	"math"
	"sort"
)

// Table is a validated, immutable margin range table. Build one with
// NewTable; the zero Table is empty and every lookup on it fails.
type Table struct {
	ranges []MarginRange
}

// NewTable validates ranges and returns a table holding a private copy.
func NewTable(ranges []MarginRange) (Table, error) {
	if err := Validate(ranges); err != nil {
		return Table{}, err
	}
	return Table{ranges: append([]MarginRange(nil), ranges...)}, nil
}

// MustTable is NewTable for tables known to be valid, such as the default.
func MustTable(ranges []MarginRange) Table {
	table, err := NewTable(ranges)
	if err != nil {
		panic(err)
	}
	return table
}

// Ranges returns a copy of the table's ranges.
func (t Table) Ranges() []MarginRange {
	return append([]MarginRange(nil), t.ranges...)
}

// Len returns the number of ranges.
func (t Table) Len() int {
	return len(t.ranges)
}

// IsZero reports whether the table was never built by NewTable.
func (t Table) IsZero() bool {
	return len(t.ranges) == 0
}

// Validate checks that ranges are non-empty, ascending, contiguous, within
// the margin domain and span -Inf to +Inf.
func Validate(ranges []MarginRange) error {
	if len(ranges) == 0 {
		return &TableError{Kind: TableEmpty, Index: -1}
	}

	for i, r := range ranges {
		if math.IsNaN(r.MinMargin) || math.IsNaN(r.MaxMargin) {
			return tableError(TableUnsorted, i, "bounds must be numbers")
		}
		if r.MinMargin >= r.MaxMargin {
			return tableError(TableUnsorted, i, "minMargin %v is not below maxMargin %v", r.MinMargin, r.MaxMargin)
		}
		if !math.IsInf(r.MinMargin, 0) && r.MinMargin >= 1 {
			return tableError(TableBoundOutOfDomain, i, "minMargin %v must be below 1", r.MinMargin)
		}
		if !math.IsInf(r.MaxMargin, 0) && r.MaxMargin >= 1 {
			return tableError(TableBoundOutOfDomain, i, "maxMargin %v must be below 1", r.MaxMargin)
		}
		if i > 0 && r.MinMargin <= ranges[i-1].MinMargin {
			return tableError(TableUnsorted, i, "minMargin %v does not follow %v", r.MinMargin, ranges[i-1].MinMargin)
		}
	}

	for i := 0; i < len(ranges)-1; i++ {
		upper, nextLower := ranges[i].MaxMargin, ranges[i+1].MinMargin
		switch {
		case upper < nextLower:
			return tableError(TableGap, i, "gap between %v and %v", upper, nextLower)
		case upper > nextLower:
			return tableError(TableGap, i, "overlaps next range (%v > %v)", upper, nextLower)
		}
	}

	if first := ranges[0]; !math.IsInf(first.MinMargin, -1) {
		return tableError(TableNoCoverage, 0, "first minMargin must be -Inf, got %v", first.MinMargin)
	}
	last := len(ranges) - 1
	if !math.IsInf(ranges[last].MaxMargin, 1) {
		return tableError(TableNoCoverage, last, "last maxMargin must be +Inf, got %v", ranges[last].MaxMargin)
	}
	return nil
}

// FindRange returns the range where MinMargin <= margin < MaxMargin, along
// with its index. A margin exactly on a boundary resolves to the higher band.
func (t Table) FindRange(margin float64) (MarginRange, int, error) {
	if t.IsZero() {
		return MarginRange{}, -1, &TableError{Kind: TableEmpty, Index: -1}
	}
	if math.IsNaN(margin) {
		return MarginRange{}, -1, tableError(TableNoCoverage, -1, "margin is NaN")
	}

	// First range whose exclusive upper bound lies above margin.
	i := sort.Search(len(t.ranges), func(i int) bool {
		return t.ranges[i].MaxMargin > margin
	})
	if i == len(t.ranges) || !t.ranges[i].Contains(margin) {
		return MarginRange{}, -1, tableError(TableNoCoverage, -1, "no range covers margin %v", margin)
	}
	return t.ranges[i], i, nil
}

// FindRangeForPrice returns the band that price reaches over cost, along with
// its index. It starts from the band covering the exact margin and moves up
// while the next band's BoundaryPrice is already met.
func (t Table) FindRangeForPrice(price, cost float64) (MarginRange, int, error) {
	r, i, err := t.FindRange(MarginAtPrice(price, cost))
	if err != nil {
		return MarginRange{}, -1, err
	}
	for {
		next, ok := t.Next(i)
		if !ok || !ReachesMargin(price, cost, next.MinMargin) {
			return r, i, nil
		}
		r, i = next, i+1
	}
}

// Next returns the range above index i, if any.
func (t Table) Next(i int) (MarginRange, bool) {
	if i < 0 || i+1 >= len(t.ranges) {
		return MarginRange{}, false
	}
	return t.ranges[i+1], true
}
