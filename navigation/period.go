package navigation

import "time"

// =============================================================================
// DATE RANGE
// =============================================================================

// DateRange is an inclusive [Start, End] pair with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two bounds in either order.
func NewDateRange(a, b time.Time) DateRange {
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Start: a, End: b}
}

// Contains returns true if t is within [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the whole-day length of the range, the value a custom range
// contributes as its period length.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End)
}

func (r DateRange) String() string {
	return "[" + r.Start.Format(time.RFC3339) + ", " + r.End.Format(time.RFC3339) + "]"
}

// =============================================================================
// PERIOD DESCRIPTOR - element of an enumerated period sequence
// =============================================================================

type PeriodDescriptor struct {
	Start     time.Time
	End       time.Time
	Frequency string
}

// Range returns the descriptor's bounds as a DateRange.
func (p PeriodDescriptor) Range() DateRange {
	return DateRange{Start: p.Start, End: p.End}
}

// =============================================================================
// CUSTOM RANGE SOURCE
// =============================================================================

// RangeSource exposes the currently selected custom range, typically held in
// the user's session. ok is false when nothing has been selected.
type RangeSource interface {
	CurrentRange() (r DateRange, ok bool)
}

// StaticRange is a RangeSource that always returns the same range.
type StaticRange DateRange

func (s StaticRange) CurrentRange() (DateRange, bool) {
	return DateRange(s), true
}
