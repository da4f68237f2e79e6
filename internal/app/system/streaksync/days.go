package streaksync

import (
	"sort"
	"time"

	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/streak"
)

const dateLayout = "2006-01-02"

// toggledDates returns every toggled date on rec, including the days of
// the ActiveMonth projection. Malformed entries are skipped.
func toggledDates(rec models.StreakRecord) []time.Time {
	var out []time.Time
	for _, s := range rec.ActiveDates {
		if t, err := time.Parse(dateLayout, s); err == nil {
			out = append(out, t)
		}
	}
	if m, err := calendar.Parse(rec.ActiveMonth); err == nil {
		for _, d := range inMonth(rec.ActiveCalendarDays, m) {
			out = append(out, m.Date(d, time.UTC))
		}
	}
	return out
}

// ToggledDays returns the days of m the user toggled as complete.
// Days recorded for any other month are never included, and neither
// are projection days without a month.
func ToggledDays(rec models.StreakRecord, m calendar.Month) []int {
	var days []int
	for _, t := range toggledDates(rec) {
		if calendar.Of(t) == m {
			days = append(days, t.Day())
		}
	}
	return calendar.Union(days)
}

// withToggledDays returns rec with the toggles of m replaced by days.
// Toggles of other months are kept. The projection is rebuilt for the
// month of now.
func withToggledDays(rec models.StreakRecord, m calendar.Month, days []int, now time.Time) models.StreakRecord {
	seen := map[string]struct{}{}
	dates := []string{}
	add := func(t time.Time) {
		key := t.Format(dateLayout)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		dates = append(dates, key)
	}
	for _, t := range toggledDates(rec) {
		if calendar.Of(t) != m {
			add(t)
		}
	}
	for _, d := range inMonth(calendar.Union(days), m) {
		add(m.Date(d, time.UTC))
	}
	sort.Strings(dates)

	cur := calendar.Of(now)
	rec.ActiveDates = dates
	rec.ActiveMonth = cur.String()
	rec.ActiveCalendarDays = ToggledDays(models.StreakRecord{ActiveDates: dates}, cur)
	return rec
}

// upTo keeps the days no later than cutoff.
func upTo(days []int, cutoff int) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d <= cutoff {
			out = append(out, d)
		}
	}
	return out
}

// monthView is the derived calendar of one month: the active days
// (toggles plus report days, nothing after today), the report days and
// the streak and completion numbers they give.
type monthView struct {
	active     []int
	reportDays []int
	streak     streak.Result
	completion int
}

func viewMonth(m calendar.Month, toggles []int, reports []models.Report, now time.Time, loc *time.Location) monthView {
	cutoff := calendar.Cutoff(m, now)
	reportDays := upTo(ReportDays(reports, m, loc), cutoff)
	active := upTo(calendar.Union(inMonth(toggles, m), reportDays), cutoff)
	return monthView{
		active:     active,
		reportDays: reportDays,
		streak:     computeStreak(m, active, now),
		completion: streak.CompletionRate(active, reportDays, cutoff),
	}
}
