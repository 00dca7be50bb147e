package navigation

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// FISCAL YEAR - Annual report periods not aligned to January 1
// =============================================================================

// FiscalYearProvider bounds the fiscal year containing a date. UpdateStartDate
// and UpdateEndDate consult it for yearly report ranges.
type FiscalYearProvider interface {
	StartOfFiscalYear(t time.Time) time.Time
	EndOfFiscalYear(t time.Time) time.Time
}

// FiscalCalendar is a FiscalYearProvider configured by the month and day the
// fiscal year starts on. The zero value (Custom false) is the calendar year.
//
// Examples:
//   - Calendar year:     Jan 1 - Dec 31
//   - UK tax year:       Apr 6 - Apr 5
//   - US federal budget: Oct 1 - Sep 30
type FiscalCalendar struct {
	Custom     bool
	StartMonth time.Month
	StartDay   int
}

// ParseFiscalYearStart parses an "MM-DD" fiscal year start. The day must exist
// in that month of a leap year, so "02-29" is accepted.
func ParseFiscalYearStart(s string) (FiscalCalendar, error) {
	if len(s) != 5 || s[2] != '-' || !digits(s[:2]) || !digits(s[3:]) {
		return FiscalCalendar{}, fmt.Errorf("%w: %q is not MM-DD", ErrInvalidFiscalYearStart, s)
	}
	month, _ := strconv.Atoi(s[:2])
	day, _ := strconv.Atoi(s[3:])
	if month < 1 || month > 12 {
		return FiscalCalendar{}, fmt.Errorf("%w: month %d out of range", ErrInvalidFiscalYearStart, month)
	}
	// 2000 is a leap year.
	last := time.Date(2000, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > last {
		return FiscalCalendar{}, fmt.Errorf("%w: day %d out of range for month %d", ErrInvalidFiscalYearStart, day, month)
	}
	return FiscalCalendar{Custom: true, StartMonth: time.Month(month), StartDay: day}, nil
}

// String returns the "MM-DD" start, "01-01" for the calendar year.
func (fc FiscalCalendar) String() string {
	if !fc.Custom {
		return "01-01"
	}
	return fmt.Sprintf("%02d-%02d", int(fc.StartMonth), fc.StartDay)
}

// StartOfFiscalYear returns 00:00 of the first day of the fiscal year that
// contains t.
func (fc FiscalCalendar) StartOfFiscalYear(t time.Time) time.Time {
	if !fc.Custom {
		return StartOfYear(t)
	}
	start := time.Date(t.Year(), fc.StartMonth, fc.StartDay, 0, 0, 0, 0, t.Location())

	// If date is before fiscal year start, we're in previous fiscal year
	if start.After(t) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

// EndOfFiscalYear returns the last instant of the fiscal year that contains t.
func (fc FiscalCalendar) EndOfFiscalYear(t time.Time) time.Time {
	if !fc.Custom {
		return EndOfYear(t)
	}
	return EndOfDay(fc.StartOfFiscalYear(t).AddDate(1, 0, -1))
}

// Period returns the fiscal year containing t.
func (fc FiscalCalendar) Period(t time.Time) DateRange {
	return DateRange{Start: fc.StartOfFiscalYear(t), End: fc.EndOfFiscalYear(t)}
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
