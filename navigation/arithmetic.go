package navigation

import "time"

// =============================================================================
// PERIOD ARITHMETIC
// =============================================================================

// AddPeriod advances t by skip+1 periods of code.
//
// Monthly additions of exactly one month do not spill into the month after
// next: 2019-01-29, -30 and -31 all become 2019-02-28 instead of early March.
// Larger additions overflow like time.AddDate.
//
// Unknown codes are logged and t is returned unchanged.
func (n *Navigator) AddPeriod(t time.Time, code string, skip int) time.Time {
	f, ok := n.lookup("AddPeriod", code)
	if !ok {
		return t
	}
	res := f.Resolution()
	amount := (skip + 1) * res.Multiplier
	date := res.Unit.add(t, amount)

	if f == Monthly && amount == 1 && int(date.Month())-int(t.Month()) == 2 && date.Day() > 0 {
		date = date.AddDate(0, 0, -date.Day())
	}
	return date
}

// SubtractPeriod moves t back by count periods of code. A custom period is
// the current custom range's length in days. Rolling codes always step back a
// single window and ignore count.
//
// Unknown codes return an *UnsupportedFrequencyError.
func (n *Navigator) SubtractPeriod(t time.Time, code string, count int) (time.Time, error) {
	f, ok := codes[code]
	if !ok {
		return t, &UnsupportedFrequencyError{Code: code, Operation: "SubtractPeriod"}
	}

	switch f {
	case Daily:
		return t.AddDate(0, 0, -count), nil
	case Weekly:
		return t.AddDate(0, 0, -7*count), nil
	case Monthly:
		return t.AddDate(0, -count, 0), nil
	case Yearly:
		return t.AddDate(-count, 0, 0), nil
	case Quarterly:
		return t.AddDate(0, -3*count, 0), nil
	case HalfYearly:
		return t.AddDate(0, -6*count, 0), nil
	case Custom:
		return t.AddDate(0, 0, -count*n.CustomRange().Days()), nil
	case Last7:
		return t.AddDate(0, 0, -7), nil
	case Last30:
		return t.AddDate(0, 0, -30), nil
	case Last90:
		return t.AddDate(0, 0, -90), nil
	case Last365:
		return t.AddDate(0, 0, -365), nil
	case YearToDate:
		return t.AddDate(-1, 0, 0), nil
	case QuarterToDate:
		return t.AddDate(0, -3, 0), nil
	case MonthToDate:
		return t.AddDate(0, -1, 0), nil
	}
	return t, &UnsupportedFrequencyError{Code: code, Operation: "SubtractPeriod"}
}

// =============================================================================
// REPORT RANGES
// =============================================================================

// UpdateStartDate returns the start of the report range of code around t.
// Yearly ranges follow the fiscal year. Rolling windows reach back from t;
// -to-date windows start at the current month, quarter or year.
//
// Unknown codes return an *UnsupportedFrequencyError.
func (n *Navigator) UpdateStartDate(code string, t time.Time) (time.Time, error) {
	n.logger().Debug("UpdateStartDate", "code", code, "date", t.Format("2006-01-02"))

	f, ok := codes[code]
	if !ok {
		return t, &UnsupportedFrequencyError{Code: code, Operation: "UpdateStartDate"}
	}

	switch f {
	case Daily:
		return StartOfDay(t), nil
	case Weekly:
		return StartOfWeek(t), nil
	case Monthly, Custom, MonthToDate:
		return StartOfMonth(t), nil
	case Quarterly, QuarterToDate:
		return StartOfQuarter(t), nil
	case HalfYearly:
		return StartOfHalfYear(t), nil
	case Yearly:
		return n.fiscal().StartOfFiscalYear(t), nil
	case YearToDate:
		return StartOfYear(t), nil
	case Last7:
		return t.AddDate(0, 0, -7), nil
	case Last30:
		return t.AddDate(0, 0, -30), nil
	case Last90:
		return t.AddDate(0, 0, -90), nil
	case Last365:
		return t.AddDate(0, 0, -365), nil
	}
	return t, &UnsupportedFrequencyError{Code: code, Operation: "UpdateStartDate"}
}

// UpdateEndDate returns the end of the report range of code that starts at t.
// Yearly ranges follow the fiscal year; rolling and -to-date ranges end today.
//
// Quarters end at the last nanosecond of the quarter's last day, like every
// other fixed frequency, not at 00:00 of that day.
//
// Two cases mirror long-standing behavior rather than calendar sense: a custom
// range "ends" at the start of t's month, and a first-half-year range ends at
// July 1 00:00 instead of the end of June.
//
// Unknown codes return an *UnsupportedFrequencyError.
func (n *Navigator) UpdateEndDate(code string, t time.Time) (time.Time, error) {
	n.logger().Debug("UpdateEndDate", "code", code, "date", t.Format("2006-01-02"))

	f, ok := codes[code]
	if !ok {
		return t, &UnsupportedFrequencyError{Code: code, Operation: "UpdateEndDate"}
	}

	switch f {
	case Daily:
		return EndOfDay(t), nil
	case Weekly:
		return EndOfWeek(t), nil
	case Monthly:
		return EndOfMonth(t), nil
	case Quarterly:
		return EndOfQuarter(t), nil
	case Custom:
		return StartOfMonth(t), nil
	case HalfYearly:
		if t.Month() >= time.July {
			return EndOfYear(t), nil
		}
		return StartOfYear(t).AddDate(0, 6, 0), nil
	case Yearly:
		return n.fiscal().EndOfFiscalYear(t), nil
	case Last7, Last30, Last90, Last365, YearToDate, QuarterToDate, MonthToDate:
		end := EndOfDay(n.today())
		n.logger().Debug("UpdateEndDate returns", "date", end.Format("2006-01-02"))
		return end, nil
	}
	return t, &UnsupportedFrequencyError{Code: code, Operation: "UpdateEndDate"}
}
