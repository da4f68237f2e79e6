// Package calendar models the days of a single month as plain
// day-of-month integers, the way the dashboard calendar shows them.
package calendar

import (
	"fmt"
	"sort"
	"time"
)

// DaysInMonth returns the number of days in month of year. It asks for
// day 0 of the following month, so out-of-range months wrap the same
// way time.Date normalises them.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of day 1, 0 = Sunday.
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// Grid returns the renderable calendar: FirstWeekday leading zero slots
// followed by 1..DaysInMonth.
func Grid(year int, month time.Month) []int {
	lead := FirstWeekday(year, month)
	n := DaysInMonth(year, month)
	grid := make([]int, lead, lead+n)
	for d := 1; d <= n; d++ {
		grid = append(grid, d)
	}
	return grid
}

// Month identifies a calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Of returns the month containing t (in t's location).
func Of(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// NewMonth builds a month from a 1-based month number. The result is
// not validated; see Valid.
func NewMonth(year, month int) Month {
	return Month{Year: year, Month: time.Month(month)}
}

// Parse reads "YYYY-MM".
func Parse(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("calendar: bad month %q: %w", s, err)
	}
	return Of(t), nil
}

// Valid reports whether the month index is 1..12.
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns the number of days in m.
func (m Month) Days() int { return DaysInMonth(m.Year, m.Month) }

// Date returns midnight of day in m at loc.
func (m Month) Date(day int, loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, loc)
}

// Contains reports whether t, seen in loc, falls inside m.
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	return Of(t.In(loc)) == m
}

// Compare returns -1 if m is before the month of now, 0 if it is the
// same month and 1 if it is after.
func (m Month) Compare(now time.Time) int {
	cur := Of(now)
	switch {
	case m.Year < cur.Year || (m.Year == cur.Year && m.Month < cur.Month):
		return -1
	case m == cur:
		return 0
	default:
		return 1
	}
}

// Prev returns the month before m.
func (m Month) Prev() Month {
	return Of(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Next returns the month after m.
func (m Month) Next() Month {
	return Of(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// Cutoff is the last day of m that counts toward completion: today for
// the current month, the whole month for a past month, and 0 for a
// month that has not started.
func Cutoff(m Month, now time.Time) int {
	switch m.Compare(now) {
	case 0:
		return now.Day()
	case -1:
		return m.Days()
	default:
		return 0
	}
}

// MissedDays lists the days of m that should have been completed by now
// but are not in active. In the current month today is not missed yet.
func MissedDays(m Month, active []int, now time.Time) []int {
	last := 0
	switch m.Compare(now) {
	case 0:
		last = now.Day() - 1
	case -1:
		last = m.Days()
	}
	set := ToSet(active)
	missed := []int{}
	for d := 1; d <= last; d++ {
		if _, ok := set[d]; !ok {
			missed = append(missed, d)
		}
	}
	return missed
}

// ToSet converts a day list to a set.
func ToSet(days []int) map[int]struct{} {
	set := make(map[int]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}

// Union merges day lists into one sorted list without duplicates.
func Union(lists ...[]int) []int {
	set := map[int]struct{}{}
	for _, l := range lists {
		for _, d := range l {
			set[d] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Without returns days minus day, preserving order.
func Without(days []int, day int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d != day {
			out = append(out, d)
		}
	}
	return out
}
