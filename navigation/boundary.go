package navigation

import "time"

// =============================================================================
// PERIOD BOUNDARIES
// =============================================================================

// StartOfPeriod returns the first instant of the period of code containing t.
// Years are calendar years here; fiscal years only apply to report ranges
// (UpdateStartDate). Rolling codes return the start of their window ending at
// t. A custom period is assumed to start at t already.
//
// Unknown codes are logged and t is returned unchanged.
func (n *Navigator) StartOfPeriod(t time.Time, code string) time.Time {
	f, ok := n.lookup("StartOfPeriod", code)
	if !ok {
		return t
	}

	switch f {
	case Daily:
		return StartOfDay(t)
	case Weekly:
		return StartOfWeek(t)
	case Monthly, MonthToDate:
		return StartOfMonth(t)
	case Quarterly, QuarterToDate:
		return StartOfQuarter(t)
	case HalfYearly:
		return StartOfHalfYear(t)
	case Yearly, YearToDate:
		return StartOfYear(t)
	case Last7:
		return StartOfDay(t.AddDate(0, 0, -7))
	case Last30:
		return StartOfDay(t.AddDate(0, 0, -30))
	case Last90:
		return StartOfDay(t.AddDate(0, 0, -90))
	case Last365:
		return StartOfDay(t.AddDate(0, 0, -365))
	case Custom:
		return t
	}
	return t
}

// EndOfPeriod returns the end of the period of code that starts at t. Fixed
// frequencies advance one period from t and step back a day, so t is expected
// to be a period start (as produced by StartOfPeriod). Daily stays on t's day.
//
// A custom period spans as many days as the current custom range.
//
// Rolling codes return a day start, not a day end: last-N windows end N days
// after t at 00:00, -to-date windows at 00:00 of the last day of the month,
// quarter or year. Chart bucketing depends on this, keep it.
//
// Unknown codes are logged and t is returned unchanged.
func (n *Navigator) EndOfPeriod(t time.Time, code string) time.Time {
	f, ok := n.lookup("EndOfPeriod", code)
	if !ok {
		return t
	}

	switch f {
	case Daily:
		return EndOfDay(t)
	case Weekly:
		return EndOfDay(t.AddDate(0, 0, 7-1))
	case Monthly:
		return EndOfDay(t.AddDate(0, 1, -1))
	case Quarterly:
		return EndOfDay(t.AddDate(0, 3, -1))
	case HalfYearly:
		return EndOfDay(t.AddDate(0, 6, -1))
	case Yearly:
		return EndOfDay(t.AddDate(1, 0, -1))
	case Custom:
		return t.AddDate(0, 0, n.CustomRange().Days())
	case Last7:
		return StartOfDay(t.AddDate(0, 0, 7))
	case Last30:
		return StartOfDay(t.AddDate(0, 0, 30))
	case Last90:
		return StartOfDay(t.AddDate(0, 0, 90))
	case Last365:
		return StartOfDay(t.AddDate(0, 0, 365))
	case MonthToDate:
		return StartOfDay(EndOfMonth(t))
	case QuarterToDate:
		return StartOfDay(EndOfQuarter(t))
	case YearToDate:
		return StartOfDay(EndOfYear(t))
	}
	return t
}

// EndOfX returns the last instant of the calendar unit of code containing t,
// without multipliers or rolling behavior, clamped to maxDate when maxDate is
// non-nil and earlier. Codes without a calendar unit (custom, rolling) leave t
// as is before clamping; unknown codes are logged and treated the same way.
//
// Half-year codes have a calendar unit here: they end on June 30 or December
// 31 rather than passing t through unchanged.
func (n *Navigator) EndOfX(t time.Time, code string, maxDate *time.Time) time.Time {
	end := t
	if f, ok := n.lookup("EndOfX", code); ok {
		switch f {
		case Daily:
			end = EndOfDay(t)
		case Weekly:
			end = EndOfWeek(t)
		case Monthly:
			end = EndOfMonth(t)
		case Quarterly:
			end = EndOfQuarter(t)
		case HalfYearly:
			end = EndOfHalfYear(t)
		case Yearly:
			end = EndOfYear(t)
		}
	}

	if maxDate != nil && end.After(*maxDate) {
		return *maxDate
	}
	return end
}
