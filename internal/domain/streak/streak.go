// Package streak computes current and longest streaks and completion
// rates. Every function here is pure: the caller supplies "now".
package streak

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the ISO date format used for last-active dates.
const DateLayout = "2006-01-02"

// Result is the outcome of a streak calculation.
type Result struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// Merge keeps the longest streak monotonic against a stored value.
func (r Result) Merge(storedLongest int) Result {
	if storedLongest > r.Longest {
		r.Longest = storedLongest
	}
	return r
}

// SameMonth computes streaks from day-of-month integers of a single
// viewed month. today is the day-of-month of now and only matters when
// isCurrentMonth is true; in that case days after today are ignored.
func SameMonth(days []int, today int, isCurrentMonth bool) Result {
	uniq := map[int]struct{}{}
	for _, d := range days {
		if d < 1 || (isCurrentMonth && d > today) {
			continue
		}
		uniq[d] = struct{}{}
	}
	if len(uniq) == 0 {
		return Result{}
	}
	sorted := make([]int, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	var res Result
	if isCurrentMonth && (sorted[0] == today || (today > 1 && sorted[0] == today-1)) {
		res.Current = 1
		expected := sorted[0] - 1
		for _, d := range sorted[1:] {
			if d != expected {
				break
			}
			res.Current++
			expected--
		}
	}

	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]-1 {
			run++
			continue
		}
		res.Longest = max(res.Longest, run)
		run = 1
	}
	res.Longest = max(res.Longest, run)
	return res
}

// CrossMonth computes streaks from full timestamps that may span months.
// Marks are reduced to calendar dates in now's location; marks after
// today do not count toward the current streak.
func CrossMonth(marks []time.Time, now time.Time) Result {
	loc := now.Location()
	uniq := map[int64]struct{}{}
	for _, m := range marks {
		uniq[dayIndex(m.In(loc))] = struct{}{}
	}
	if len(uniq) == 0 {
		return Result{}
	}
	sorted := make([]int64, 0, len(uniq))
	for d := range uniq {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	var res Result
	today := dayIndex(now)
	past := sorted
	for len(past) > 0 && past[0] > today {
		past = past[1:]
	}
	if len(past) > 0 && (past[0] == today || past[0] == today-1) {
		res.Current = 1
		for i := 1; i < len(past); i++ {
			if past[i-1]-past[i] != 1 {
				break
			}
			res.Current++
		}
	}

	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1]-sorted[i] == 1 {
			run++
			continue
		}
		res.Longest = max(res.Longest, run)
		run = 1
	}
	res.Longest = max(res.Longest, run)
	return res
}

// dayIndex numbers calendar dates consecutively, ignoring DST and
// zone offsets.
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DateKey formats t as an ISO date.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Advance applies the linear rule used when a report is submitted:
// last active yesterday extends the streak, last active today keeps it,
// anything else restarts it at 1.
func Advance(current int, lastActive *string, now time.Time) int {
	today := DateKey(now)
	y, m, d := now.Date()
	yesterday := DateKey(time.Date(y, m, d-1, 0, 0, 0, 0, now.Location()))

	switch {
	case lastActive != nil && *lastActive == yesterday:
		return current + 1
	case lastActive == nil || *lastActive != today:
		return 1
	default:
		return current
	}
}

// CompletionRate returns round(100 * |union(active, reportDays) ∩ [1,cutoff]| / cutoff).
// A non-positive cutoff yields 0.
func CompletionRate(active, reportDays []int, cutoff int) int {
	if cutoff <= 0 {
		return 0
	}
	seen := map[int]struct{}{}
	for _, list := range [][]int{active, reportDays} {
		for _, d := range list {
			if d >= 1 && d <= cutoff {
				seen[d] = struct{}{}
			}
		}
	}
	return int(math.Round(100 * float64(len(seen)) / float64(cutoff)))
}
