/*
Package navigation is the period calculus engine.

PURPOSE:
  Translates a reporting frequency code ("1M", "quarterly", "last30", "YTD",
  "custom", ...) into concrete calendar boundaries and does calendar-correct
  period arithmetic: advance or retreat by N periods, enumerate successive
  periods, chunk a long span into report periods, and choose a display
  granularity.

KEY CONCEPTS:
  - Frequency: closed enum; synonymous codes collapse in Resolve
  - Navigator: the operations, parameterized by its collaborators
  - FiscalYearProvider: bounds yearly report ranges (FiscalCalendar)
  - RangeSource: the user's selected custom range (session state)

STATE:
  A Navigator holds configuration only. Every method is a pure function of
  its arguments plus two reads: the custom range (custom code only) and the
  fiscal year provider (yearly report ranges only). Copy the struct to vary a
  collaborator per request; no locking is needed.

USAGE:
  nav := &navigation.Navigator{Fiscal: navigation.FiscalCalendar{}}
  start := nav.StartOfPeriod(t, "quarter")
  end := nav.EndOfPeriod(start, "quarter")
  prev, err := nav.SubtractPeriod(start, "quarter", 1)

SEE ALSO:
  - boundary.go: StartOfPeriod, EndOfPeriod, EndOfX
  - arithmetic.go: AddPeriod, SubtractPeriod, UpdateStartDate, UpdateEndDate
  - enumerate.go: BlockPeriods, ListOfPeriods
  - format.go: granularity selectors, ViewRange, PeriodShow
*/
package navigation

import (
	"log/slog"
	"time"
)

// Navigator performs period calculations. The zero value is usable: it logs to
// slog.Default(), uses the calendar year as fiscal year, English labels, the
// wall clock, and the current calendar month as custom range.
type Navigator struct {
	Logger *slog.Logger
	Fiscal FiscalYearProvider
	Ranges RangeSource
	Labels Labeler
	Locale string

	// Now returns the current time; "today" for rolling report ranges and the
	// custom range fallback derive from it.
	Now func() time.Time
}

func (n *Navigator) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func (n *Navigator) fiscal() FiscalYearProvider {
	if n.Fiscal != nil {
		return n.Fiscal
	}
	return FiscalCalendar{}
}

func (n *Navigator) labels() Labeler {
	if n.Labels != nil {
		return n.Labels
	}
	return EnglishLabels{}
}

func (n *Navigator) today() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// WithRange returns a copy of n reading the custom range from src.
func (n *Navigator) WithRange(src RangeSource) *Navigator {
	c := *n
	c.Ranges = src
	return &c
}

// WithFiscal returns a copy of n using fp for yearly report ranges.
func (n *Navigator) WithFiscal(fp FiscalYearProvider) *Navigator {
	c := *n
	c.Fiscal = fp
	return &c
}

// CustomRange returns the selected custom range, or the current calendar month
// when none is selected.
func (n *Navigator) CustomRange() DateRange {
	if n.Ranges != nil {
		if r, ok := n.Ranges.CurrentRange(); ok {
			return NewDateRange(r.Start, r.End)
		}
	}
	today := n.today()
	return DateRange{Start: StartOfMonth(today), End: EndOfMonth(today)}
}

// lookup resolves code, logging at error level when it is unknown. Used by
// the degrade-and-log operations.
func (n *Navigator) lookup(op, code string) (Frequency, bool) {
	f, ok := codes[code]
	if !ok {
		n.logger().Error("cannot resolve frequency", "operation", op, "code", code)
	}
	return f, ok
}
