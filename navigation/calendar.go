package navigation

import "time"

// =============================================================================
// CALENDAR HELPERS - Civil date operations on time.Time
// =============================================================================
// All helpers keep the location of their input. "End of X" is the last
// nanosecond of the unit. Month arithmetic overflows the way time.AddDate does
// (Jan 31 + 1 month = Mar 3); callers that need clamping do it themselves.

const lastNanosecond = 999999999

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, lastNanosecond, t.Location())
}

// StartOfWeek returns Monday 00:00 of t's week.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t.AddDate(0, 0, -offset))
}

// EndOfWeek returns the last instant of Sunday of t's week.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	// Day 0 of the next month is the last day of this one.
	return EndOfDay(time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()))
}

// Quarter returns 1..4.
func Quarter(t time.Time) int { return (int(t.Month())-1)/3 + 1 }

func StartOfQuarter(t time.Time) time.Time {
	first := time.Month((Quarter(t)-1)*3 + 1)
	return time.Date(t.Year(), first, 1, 0, 0, 0, 0, t.Location())
}

func EndOfQuarter(t time.Time) time.Time {
	next := time.Month(Quarter(t)*3 + 1)
	return EndOfDay(time.Date(t.Year(), next, 0, 0, 0, 0, 0, t.Location()))
}

// StartOfHalfYear splits the year at July.
func StartOfHalfYear(t time.Time) time.Time {
	start := StartOfYear(t)
	if t.Month() >= time.July {
		start = start.AddDate(0, 6, 0)
	}
	return start
}

func EndOfHalfYear(t time.Time) time.Time {
	if t.Month() >= time.July {
		return EndOfYear(t)
	}
	return EndOfDay(time.Date(t.Year(), time.June, 30, 0, 0, 0, 0, t.Location()))
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 23, 59, 59, lastNanosecond, t.Location())
}

// =============================================================================
// DIFFERENCES
// =============================================================================

// DaysBetween returns the number of whole days between a and b, regardless of
// order. A partial trailing day does not count: the 1st at 00:00 and the 31st
// at 23:59 are 30 days apart.
func DaysBetween(a, b time.Time) int {
	a, b = ordered(a, b)
	days := int((civilMidnight(b).Unix() - civilMidnight(a).Unix()) / secondsPerDay)
	if clock(b) < clock(a) {
		days--
	}
	return days
}

// MonthsBetween returns the number of whole calendar months between a and b,
// regardless of order. Jan 31 to Feb 28 is zero months.
func MonthsBetween(a, b time.Time) int {
	a, b = ordered(a, b)
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() || (b.Day() == a.Day() && clock(b) < clock(a)) {
		months--
	}
	return months
}

func ordered(a, b time.Time) (time.Time, time.Time) {
	b = b.In(a.Location())
	if b.Before(a) {
		return b, a
	}
	return a, b
}

const secondsPerDay = 24 * 60 * 60

// civilMidnight drops the zone so DST transitions don't skew day counts.
func civilMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}
