package navigation

import (
	"fmt"
	"time"
)

// =============================================================================
// FREQUENCY - Closed set of reporting frequencies
// =============================================================================

// Frequency is the resolved form of a frequency code. Synonymous codes
// ("1M", "month", "monthly") resolve to the same Frequency, so every operation
// switches on this type rather than on raw strings.
type Frequency int

const (
	Unresolved Frequency = iota
	Daily
	Weekly
	Monthly
	Quarterly
	HalfYearly
	Yearly
	Custom
	Last7
	Last30
	Last90
	Last365
	MonthToDate
	QuarterToDate
	YearToDate
)

// synonyms lists the accepted codes per frequency. The first entry is the
// canonical code.
var synonyms = map[Frequency][]string{
	Daily:         {"1D", "daily"},
	Weekly:        {"1W", "week", "weekly"},
	Monthly:       {"1M", "month", "monthly"},
	Quarterly:     {"3M", "quarter", "quarterly"},
	HalfYearly:    {"6M", "half-year", "half_year"},
	Yearly:        {"1Y", "year", "yearly"},
	Custom:        {"custom"},
	Last7:         {"last7"},
	Last30:        {"last30"},
	Last90:        {"last90"},
	Last365:       {"last365"},
	MonthToDate:   {"MTD"},
	QuarterToDate: {"QTD"},
	YearToDate:    {"YTD"},
}

var codes = func() map[string]Frequency {
	m := make(map[string]Frequency)
	for f, names := range synonyms {
		for _, name := range names {
			m[name] = f
		}
	}
	return m
}()

// Frequencies returns every resolvable frequency in declaration order.
func Frequencies() []Frequency {
	out := make([]Frequency, 0, int(YearToDate))
	for f := Daily; f <= YearToDate; f++ {
		out = append(out, f)
	}
	return out
}

// Code returns the canonical code, or "" for Unresolved.
func (f Frequency) Code() string {
	if names, ok := synonyms[f]; ok {
		return names[0]
	}
	return ""
}

// Synonyms returns all codes that resolve to f.
func (f Frequency) Synonyms() []string {
	return append([]string(nil), synonyms[f]...)
}

func (f Frequency) String() string {
	if code := f.Code(); code != "" {
		return code
	}
	return "unresolved"
}

// IsRolling reports whether f is a rolling window or a -to-date window, i.e.
// a range anchored at a moving date rather than a fixed calendar unit.
func (f Frequency) IsRolling() bool {
	switch f {
	case Last7, Last30, Last90, Last365, MonthToDate, QuarterToDate, YearToDate:
		return true
	}
	return false
}

// =============================================================================
// RESOLVER
// =============================================================================

// Unit is the calendar unit period arithmetic steps by.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitQuarter
	UnitYear
)

func (u Unit) String() string {
	switch u {
	case UnitDay:
		return "day"
	case UnitWeek:
		return "week"
	case UnitMonth:
		return "month"
	case UnitQuarter:
		return "quarter"
	case UnitYear:
		return "year"
	default:
		return "unknown"
	}
}

// add moves t by n units; negative n goes back.
func (u Unit) add(t time.Time, n int) time.Time {
	switch u {
	case UnitDay:
		return t.AddDate(0, 0, n)
	case UnitWeek:
		return t.AddDate(0, 0, 7*n)
	case UnitMonth:
		return t.AddDate(0, n, 0)
	case UnitQuarter:
		return t.AddDate(0, 3*n, 0)
	case UnitYear:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// Resolution is the arithmetic shape of a frequency: one period is Multiplier
// steps of Unit.
type Resolution struct {
	Frequency  Frequency
	Unit       Unit
	Multiplier int
}

// Resolution returns the unit and multiplier used when advancing by one
// period of f. The zero Resolution is returned for Unresolved.
func (f Frequency) Resolution() Resolution {
	r := Resolution{Frequency: f, Multiplier: 1}
	switch f {
	case Daily:
		r.Unit = UnitDay
	case Weekly:
		r.Unit = UnitWeek
	case Monthly, Custom, Last30, MonthToDate:
		r.Unit = UnitMonth
	case Quarterly, Last90, QuarterToDate:
		r.Unit, r.Multiplier = UnitMonth, 3
	case HalfYearly:
		r.Unit, r.Multiplier = UnitMonth, 6
	case Yearly, Last365, YearToDate:
		r.Unit = UnitYear
	case Last7:
		r.Unit, r.Multiplier = UnitDay, 7
	default:
		return Resolution{}
	}
	return r
}

// Resolve maps an external code to its Resolution. Unknown codes return
// false; there is no fallback frequency.
func Resolve(code string) (Resolution, bool) {
	f, ok := codes[code]
	if !ok {
		return Resolution{}, false
	}
	return f.Resolution(), true
}

// ParseFrequency is Resolve for input validation: unknown codes produce an
// UnsupportedFrequencyError.
func ParseFrequency(code string) (Frequency, error) {
	f, ok := codes[code]
	if !ok {
		return Unresolved, &UnsupportedFrequencyError{Code: code, Operation: "ParseFrequency"}
	}
	return f, nil
}

// MustParseFrequency panics on unknown codes. For tests and constants.
func MustParseFrequency(code string) Frequency {
	f, err := ParseFrequency(code)
	if err != nil {
		panic(fmt.Sprintf("navigation: %v", err))
	}
	return f
}
