package navigation

import (
	"fmt"
	"time"
)

// =============================================================================
// GRANULARITY - Display unit for a span
// =============================================================================

// Granularity is the unit a [start, end] span is displayed and grouped in.
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityMonth
	GranularityYear
)

func (g Granularity) String() string {
	switch g {
	case GranularityMonth:
		return "month"
	case GranularityYear:
		return "year"
	default:
		return "day"
	}
}

// PreferredGranularity picks day for spans of at most one whole month, month
// for at most twelve, year beyond that. Every Preferred* selector goes through
// this function so their answers agree for the same span.
func PreferredGranularity(start, end time.Time) Granularity {
	months := MonthsBetween(start, end)
	switch {
	case months > 12:
		return GranularityYear
	case months > 1:
		return GranularityMonth
	default:
		return GranularityDay
	}
}

// SortFormat is a time layout whose output sorts chronologically.
func (g Granularity) SortFormat() string {
	switch g {
	case GranularityMonth:
		return "2006-01"
	case GranularityYear:
		return "2006"
	default:
		return "2006-01-02"
	}
}

func (g Granularity) LabelKey() FormatKey {
	switch g {
	case GranularityMonth:
		return KeyMonth
	case GranularityYear:
		return KeyYear
	default:
		return KeyMonthAndDay
	}
}

// SQLFormat is the strftime pattern that truncates a date to g.
func (g Granularity) SQLFormat() string {
	switch g {
	case GranularityMonth:
		return "%Y-%m"
	case GranularityYear:
		return "%Y"
	default:
		return "%Y-%m-%d"
	}
}

// EndOfPeriodName names the end-of-unit operation, see EndOf.
func (g Granularity) EndOfPeriodName() string {
	switch g {
	case GranularityMonth:
		return "endOfMonth"
	case GranularityYear:
		return "endOfYear"
	default:
		return "endOfDay"
	}
}

// RangeCode is the fixed frequency code matching g.
func (g Granularity) RangeCode() string {
	switch g {
	case GranularityMonth:
		return Monthly.Code()
	case GranularityYear:
		return Yearly.Code()
	default:
		return Daily.Code()
	}
}

// EndOf applies the operation EndOfPeriodName names.
func (g Granularity) EndOf(t time.Time) time.Time {
	switch g {
	case GranularityMonth:
		return EndOfMonth(t)
	case GranularityYear:
		return EndOfYear(t)
	default:
		return EndOfDay(t)
	}
}

// Next steps t forward by one unit of g.
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	case GranularityYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func PreferredSortFormat(start, end time.Time) string {
	return PreferredGranularity(start, end).SortFormat()
}

func PreferredLabelKey(start, end time.Time) FormatKey {
	return PreferredGranularity(start, end).LabelKey()
}

func PreferredSQLFormat(start, end time.Time) string {
	return PreferredGranularity(start, end).SQLFormat()
}

func PreferredEndOfPeriod(start, end time.Time) string {
	return PreferredGranularity(start, end).EndOfPeriodName()
}

func PreferredRangeFormat(start, end time.Time) string {
	return PreferredGranularity(start, end).RangeCode()
}

// =============================================================================
// VIEW RANGE
// =============================================================================

// DefaultViewRange is used when no view range preference is stored.
const DefaultViewRange = "1M"

// ViewRange returns the stored view range preference. With correct set,
// rolling and -to-date ranges are replaced by the closest fixed frequency so
// they can drive period navigation.
func ViewRange(stored string, correct bool) string {
	if stored == "" {
		stored = DefaultViewRange
	}
	if !correct {
		return stored
	}
	switch stored {
	case "last7":
		return Weekly.Code()
	case "last30", "MTD":
		return Monthly.Code()
	case "last90", "QTD":
		return Quarterly.Code()
	case "last365", "YTD":
		return Yearly.Code()
	default:
		return stored
	}
}

// =============================================================================
// PERIOD LABELS
// =============================================================================

// PeriodShow returns a short label for the period of code containing t.
// Quarters are labelled "Q3 2023". Codes without a label format, including
// rolling codes, are logged and fall back to "2006-01-02".
func (n *Navigator) PeriodShow(t time.Time, code string) string {
	f, ok := codes[code]

	var key FormatKey
	switch f {
	case Daily, Custom:
		key = KeySpecificDay
	case Weekly:
		key = KeyWeekInYear
	case Monthly:
		key = KeyMonth
	case HalfYearly:
		key = KeyHalfYear
	case Yearly:
		key = KeyYear
	case Quarterly:
		return fmt.Sprintf("Q%d %d", Quarter(t), t.Year())
	default:
		n.logger().Error("no date format for frequency", "operation", "PeriodShow", "code", code, "resolved", ok)
		return t.Format("2006-01-02")
	}
	return n.labels().Label(t, key, n.Locale)
}
