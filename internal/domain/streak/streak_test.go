package streak_test

import (
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/domain/streak"
	"github.com/google/go-cmp/cmp"
)

func TestSameMonth_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		days  []int
		today int
		cur   bool
		want  streak.Result
	}{
		{"no active days", nil, 10, true, streak.Result{}},
		{"run ending today", []int{8, 9, 10}, 10, true, streak.Result{Current: 3, Longest: 3}},
		{"two runs", []int{3, 4, 8, 9, 10}, 10, true, streak.Result{Current: 3, Longest: 3}},
		{"single stale day", []int{5}, 10, true, streak.Result{Current: 0, Longest: 1}},
		{"single day today", []int{10}, 10, true, streak.Result{Current: 1, Longest: 1}},
		{"single day yesterday", []int{9}, 10, true, streak.Result{Current: 1, Longest: 1}},
		{"run ending yesterday", []int{7, 8, 9}, 10, true, streak.Result{Current: 3, Longest: 3}},
		{"longer older run", []int{1, 2, 3, 4, 9, 10}, 10, true, streak.Result{Current: 2, Longest: 4}},
		{"duplicates", []int{10, 10, 9, 9}, 10, true, streak.Result{Current: 2, Longest: 2}},
		{"future days ignored", []int{9, 10, 15, 16}, 10, true, streak.Result{Current: 2, Longest: 2}},
		{"past month has no current", []int{28, 29, 30}, 30, false, streak.Result{Current: 0, Longest: 3}},
		{"first of month", []int{1}, 1, true, streak.Result{Current: 1, Longest: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := streak.SameMonth(tt.days, tt.today, tt.cur)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SameMonth mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSameMonth_Properties(t *testing.T) {
	for today := 1; today <= 31; today++ {
		// Contiguous run ending today: current equals its length.
		for start := 1; start <= today; start++ {
			var days []int
			for d := start; d <= today; d++ {
				days = append(days, d)
			}
			got := streak.SameMonth(days, today, true)
			if got.Current != len(days) {
				t.Fatalf("today=%d start=%d: current got %d, want %d", today, start, got.Current, len(days))
			}
			if got.Longest < got.Current {
				t.Fatalf("today=%d start=%d: longest %d < current %d", today, start, got.Longest, got.Current)
			}
		}
		// Most recent day older than yesterday: current is 0.
		for last := 1; last <= today-2; last++ {
			got := streak.SameMonth([]int{last}, today, true)
			if got.Current != 0 || got.Longest != 1 {
				t.Fatalf("today=%d last=%d: got %+v, want {0 1}", today, last, got)
			}
		}
	}
}

func TestResultMerge(t *testing.T) {
	r := streak.Result{Current: 2, Longest: 3}
	if got := r.Merge(7); got.Longest != 7 || got.Current != 2 {
		t.Errorf("Merge(7): got %+v", got)
	}
	if got := r.Merge(1); got.Longest != 3 {
		t.Errorf("Merge(1): got %+v", got)
	}
}

func TestCrossMonth(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, time.October, 1, 8, 0, 0, 0, loc)
	day := func(m time.Month, d, h int) time.Time { return time.Date(2026, m, d, h, 0, 0, 0, loc) }

	tests := []struct {
		name  string
		marks []time.Time
		want  streak.Result
	}{
		{"empty", nil, streak.Result{}},
		{"spans month boundary", []time.Time{day(9, 29, 10), day(9, 30, 22), day(10, 1, 7)}, streak.Result{Current: 3, Longest: 3}},
		{"same day twice", []time.Time{day(9, 30, 1), day(9, 30, 23)}, streak.Result{Current: 1, Longest: 1}},
		{"stale", []time.Time{day(9, 20, 1), day(9, 21, 1)}, streak.Result{Current: 0, Longest: 2}},
		{"gap stops current", []time.Time{day(9, 26, 1), day(9, 27, 1), day(9, 28, 1), day(9, 30, 1)}, streak.Result{Current: 1, Longest: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := streak.CrossMonth(tt.marks, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CrossMonth mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCrossMonth_UsesNowLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, ny)
	// 02:00 UTC on March 9 is still March 8 in New York.
	marks := []time.Time{
		time.Date(2026, time.March, 9, 2, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 7, 12, 0, 0, 0, ny),
	}
	got := streak.CrossMonth(marks, now)
	if diff := cmp.Diff(streak.Result{Current: 2, Longest: 2}, got); diff != "" {
		t.Errorf("CrossMonth across DST (-want +got):\n%s", diff)
	}
}

func TestAdvance(t *testing.T) {
	now := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		current int
		last    *string
		want    int
	}{
		{"yesterday extends", 4, str("2026-09-30"), 5},
		{"today keeps", 4, str("2026-10-01"), 4},
		{"older restarts", 4, str("2026-09-20"), 1},
		{"never active", 0, nil, 1},
	}
	for _, tt := range tests {
		if got := streak.Advance(tt.current, tt.last, now); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCompletionRate(t *testing.T) {
	all := make([]int, 0, 15)
	for d := 1; d <= 15; d++ {
		all = append(all, d)
	}
	tests := []struct {
		name    string
		active  []int
		reports []int
		cutoff  int
		want    int
	}{
		{"first half of a 31-day month", all, nil, 15, 100},
		{"nothing", nil, nil, 10, 0},
		{"zero cutoff", []int{1, 2}, nil, 0, 0},
		{"union counts once", []int{1, 2}, []int{2, 3}, 10, 30},
		{"days past cutoff ignored", []int{1, 20}, []int{25}, 10, 10},
		{"rounds half up", []int{1}, nil, 8, 13},
		{"two thirds", []int{1, 2}, nil, 3, 67},
	}
	for _, tt := range tests {
		got := streak.CompletionRate(tt.active, tt.reports, tt.cutoff)
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("%s: %d out of range", tt.name, got)
		}
	}
}

func TestDateKey(t *testing.T) {
	if got := streak.DateKey(time.Date(2026, time.January, 2, 23, 59, 0, 0, time.UTC)); got != "2026-01-02" {
		t.Errorf("DateKey: got %q", got)
	}
}
