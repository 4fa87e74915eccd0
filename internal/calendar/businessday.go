// Package calendar implements the business-day arithmetic behind derived
// schedules. A business day is Monday through Friday, minus any holidays the
// calendar was built with.
package calendar

import "time"

// Calendar skips weekends and an optional set of holidays.
type Calendar struct {
	holidays map[time.Time]struct{}
}

// New returns a calendar that also skips the given holidays.
func New(holidays ...time.Time) Calendar {
	c := Calendar{}
	if len(holidays) == 0 {
		return c
	}
	c.holidays = make(map[time.Time]struct{}, len(holidays))
	for _, day := range holidays {
		c.holidays[Date(day)] = struct{}{}
	}
	return c
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (c Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if c.holidays != nil {
		if _, ok := c.holidays[Date(d)]; ok {
			return false
		}
	}
	return true
}

// AddBusinessDays advances d by n business days. The start day itself is not
// counted, so a Friday plus five business days is the following Friday.
// Non-positive n returns d unchanged.
func (c Calendar) AddBusinessDays(d time.Time, n int) time.Time {
	cur := Date(d)
	// Any seven consecutive days hold five weekdays, so whole weeks are
	// skipped at once while more than a week of business days remains.
	for n > 5 {
		weeks := (n - 1) / 5
		next := cur.AddDate(0, 0, 7*weeks)
		n += c.holidaysIn(cur, next) - 5*weeks
		cur = next
	}
	for n > 0 {
		cur = cur.AddDate(0, 0, 1)
		if c.IsBusinessDay(cur) {
			n--
		}
	}
	return cur
}

// holidaysIn counts weekday holidays in (from, to].
func (c Calendar) holidaysIn(from, to time.Time) int {
	count := 0
	for day := range c.holidays {
		if day.After(from) && !day.After(to) {
			switch day.Weekday() {
			case time.Saturday, time.Sunday:
			default:
				count++
			}
		}
	}
	return count
}

// Span is the computed window of one phase.
type Span struct {
	Start time.Time
	End   time.Time
}

// Schedule lays phases end to end starting at start: each phase begins where
// the previous one ended.
func (c Calendar) Schedule(start time.Time, durations []int) []Span {
	spans := make([]Span, 0, len(durations))
	cursor := Date(start)
	for _, duration := range durations {
		end := c.AddBusinessDays(cursor, duration)
		spans = append(spans, Span{Start: cursor, End: end})
		cursor = end
	}
	return spans
}

// AddBusinessDays advances d by n weekdays.
func AddBusinessDays(d time.Time, n int) time.Time {
	return Calendar{}.AddBusinessDays(d, n)
}

// Schedule lays phases end to end skipping weekends only.
func Schedule(start time.Time, durations []int) []Span {
	return Calendar{}.Schedule(start, durations)
}
