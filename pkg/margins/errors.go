package margins

import (
	"errors"
	"fmt"
)

// TableErrorKind classifies why a margin range table was rejected.
type TableErrorKind int

const (
	// TableEmpty means the table has no ranges.
	TableEmpty TableErrorKind = iota + 1
	// TableUnsorted means a range is out of ascending order or has min >= max.
	TableUnsorted
	// TableGap means neighbouring ranges do not share a boundary.
	TableGap
	// TableNoCoverage means the table does not span -Inf to +Inf.
	TableNoCoverage
	// TableBoundOutOfDomain means a finite bound is at or above 1.
	TableBoundOutOfDomain
)

// Sentinels matched by errors.Is against a *TableError.
var (
	ErrEmptyTable       = errors.New("margin range table is empty")
	ErrUnsortedTable    = errors.New("margin range table is not sorted")
	ErrTableGap         = errors.New("margin range table is not contiguous")
	ErrNoCoverage       = errors.New("margin range table does not cover all margins")
	ErrBoundOutOfDomain = errors.New("margin range bound out of domain")
)

var errUnknownTableFailure = errors.New("margin range table is invalid")

func (k TableErrorKind) String() string {
	switch k {
	case TableEmpty:
		return "Empty"
	case TableUnsorted:
		return "Unsorted"
	case TableGap:
		return "Gap"
	case TableNoCoverage:
		return "NoCoverage"
	case TableBoundOutOfDomain:
		return "BoundOutOfDomain"
	}
	return fmt.Sprintf("TableErrorKind(%d)", int(k))
}

func (k TableErrorKind) sentinel() error {
	switch k {
	case TableEmpty:
		return ErrEmptyTable
	case TableUnsorted:
		return ErrUnsortedTable
	case TableGap:
		return ErrTableGap
	case TableNoCoverage:
		return ErrNoCoverage
	case TableBoundOutOfDomain:
		return ErrBoundOutOfDomain
	}
	return errUnknownTableFailure
}

// TableError reports a malformed margin range table. Index is the offending
// range, or -1 when the failure is not tied to one range.
type TableError struct {
	Kind   TableErrorKind
	Index  int
	Detail string
}

func (e *TableError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s at index %d", msg, e.Index)
	}
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	return msg
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *TableError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func tableError(kind TableErrorKind, index int, format string, args ...interface{}) *TableError {
	return &TableError{Kind: kind, Index: index, Detail: fmt.Sprintf(format, args...)}
}
