package navigation

import (
	"fmt"
	"time"
)

// FormatKey names a display format. The engine only picks keys; turning a key
// into text is the Labeler's job.
type FormatKey string

const (
	KeySpecificDay FormatKey = "config.specific_day_js"
	KeyWeekInYear  FormatKey = "config.week_in_year_js"
	KeyMonth       FormatKey = "config.month_js"
	KeyYear        FormatKey = "config.year_js"
	KeyHalfYear    FormatKey = "config.half_year_js"
	KeyMonthAndDay FormatKey = "config.month_and_day_js"
)

// Labeler renders t under a format key for a locale. An empty locale means the
// labeler's default.
type Labeler interface {
	Label(t time.Time, key FormatKey, locale string) string
}

// EnglishLabels is the built-in Labeler. It ignores the locale.
type EnglishLabels struct{}

func (EnglishLabels) Label(t time.Time, key FormatKey, _ string) string {
	switch key {
	case KeySpecificDay:
		return t.Format("Jan 2, 2006")
	case KeyWeekInYear:
		year, week := t.ISOWeek()
		return fmt.Sprintf("Week %d, %d", week, year)
	case KeyMonth:
		return t.Format("January 2006")
	case KeyYear:
		return t.Format("2006")
	case KeyHalfYear:
		half := 1
		if t.Month() >= time.July {
			half = 2
		}
		return fmt.Sprintf("H%d %d", half, t.Year())
	case KeyMonthAndDay:
		return t.Format("Jan 2")
	default:
		return t.Format("2006-01-02")
	}
}
