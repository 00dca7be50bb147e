/*
Package report sums amounts over the periods BlockPeriods produces.

PURPOSE:
  A "period-over-period" report chunks a span into periods of a frequency
  (falling back to years for long spans) and shows the total of each period
  and its change against the period before it.

USAGE:
  t := report.NewBlockTotaler(nav, start, end, "1M")
  for _, e := range entries {
      t.Include(e)
  }
  rows := t.Totals()

SEE ALSO:
  - navigation/enumerate.go: BlockPeriods
*/
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/period-engine/navigation"
)

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one dated amount.
type Entry struct {
	Date   time.Time
	Amount decimal.Decimal
}

// ErrAmountRequired is returned by NewEntry for an empty amount.
var ErrAmountRequired = errors.New("amount is required")

// NewEntry builds an Entry from a decimal string such as "12.50".
func NewEntry(date time.Time, amount string) (Entry, error) {
	if amount == "" {
		return Entry{}, ErrAmountRequired
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Entry{Date: date, Amount: d}, nil
}

// =============================================================================
// BLOCK TOTALER
// =============================================================================

// PeriodTotal is the total of one block period.
type PeriodTotal struct {
	navigation.PeriodDescriptor
	Label string
	Count int
	Total decimal.Decimal
	// Change is Total minus the total of the next older period. The oldest
	// period has nothing to compare to and reports its own total.
	Change decimal.Decimal
}

// BlockTotaler sums entries dated within [start, end] by block period.
type BlockTotaler struct {
	nav     *navigation.Navigator
	span    navigation.DateRange
	periods []navigation.PeriodDescriptor
	totals  []decimal.Decimal
	counts  []int
}

// NewBlockTotaler prepares the block periods of code between start and end.
// The span includes the whole of its last day.
func NewBlockTotaler(nav *navigation.Navigator, start, end time.Time, code string) *BlockTotaler {
	periods := nav.BlockPeriods(start, end, code)
	span := navigation.NewDateRange(start, end)
	span.End = navigation.EndOfDay(span.End)
	return &BlockTotaler{
		nav:     nav,
		span:    span,
		periods: periods,
		totals:  make([]decimal.Decimal, len(periods)),
		counts:  make([]int, len(periods)),
	}
}

// Include adds e to the first period containing it. Periods are ordered newest
// first, and the yearly fallback periods come after the finer ones, so an
// entry in an overlap counts once, towards the finer period. Entries outside
// the span or outside every period are ignored and Include returns false.
func (b *BlockTotaler) Include(e Entry) bool {
	if !b.span.Contains(e.Date) {
		return false
	}
	for i, p := range b.periods {
		if p.Range().Contains(e.Date) {
			b.totals[i] = b.totals[i].Add(e.Amount)
			b.counts[i]++
			return true
		}
	}
	return false
}

// Totals returns one row per block period, newest first.
func (b *BlockTotaler) Totals() []PeriodTotal {
	rows := make([]PeriodTotal, len(b.periods))
	for i, p := range b.periods {
		rows[i] = PeriodTotal{
			PeriodDescriptor: p,
			Label:            b.nav.PeriodShow(p.Start, p.Frequency),
			Count:            b.counts[i],
			Total:            b.totals[i],
			Change:           b.totals[i],
		}
		if i+1 < len(b.periods) {
			rows[i].Change = b.totals[i].Sub(b.totals[i+1])
		}
	}
	return rows
}

// Sum returns the total over all periods.
func (b *BlockTotaler) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range b.totals {
		sum = sum.Add(t)
	}
	return sum
}
