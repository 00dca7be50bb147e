package navigation

import "time"

// =============================================================================
// RANGE ENUMERATION
// =============================================================================

const (
	blockPeriodCount     = 13
	blockYearlyFallbacks = 20
)

// BlockPeriods walks backwards from end and returns the periods of code whose
// end lies after start, newest first. After 13 periods of code, if start is
// still not reached, it continues with up to 20 yearly periods. Inverted
// bounds are swapped.
func (n *Navigator) BlockPeriods(start, end time.Time, code string) []PeriodDescriptor {
	if end.Before(start) {
		start, end = end, start
	}

	var periods []PeriodDescriptor
	workStart, workEnd := end, end

	step := func(code string) {
		workStart = n.StartOfPeriod(workStart, code)
		workEnd = n.EndOfPeriod(workStart, code)
		if workEnd.After(start) {
			periods = append(periods, PeriodDescriptor{Start: workStart, End: workEnd, Frequency: code})
		}
		workStart = StartOfDay(workStart.AddDate(0, 0, -1))
	}

	for i := 0; i < blockPeriodCount; i++ {
		step(code)
	}
	for i := 0; workEnd.After(start) && i < blockYearlyFallbacks; i++ {
		step(Yearly.Code())
	}
	return periods
}

// PeriodLabel is one bucket of ListOfPeriods: a sortable key and a display
// label.
type PeriodLabel struct {
	Key   string
	Label string
}

// ListOfPeriods lists the buckets from start (inclusive) to end (exclusive) at
// the granularity PreferredGranularity picks for the span. Steps use calendar
// overflow, so a key can repeat; a repeated key keeps its first position and
// takes the latest label.
func (n *Navigator) ListOfPeriods(start, end time.Time) []PeriodLabel {
	g := PreferredGranularity(start, end)
	layout := g.SortFormat()
	key := g.LabelKey()

	var entries []PeriodLabel
	index := make(map[string]int)
	for begin := start; begin.Before(end); begin = g.Next(begin) {
		formatted := begin.Format(layout)
		label := n.labels().Label(begin, key, n.Locale)
		if i, seen := index[formatted]; seen {
			entries[i].Label = label
			continue
		}
		index[formatted] = len(entries)
		entries = append(entries, PeriodLabel{Key: formatted, Label: label})
	}
	return entries
}
