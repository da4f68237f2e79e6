package streaksync_test

import (
	"slices"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestToggledDays(t *testing.T) {
	sep := october.Prev()
	tests := []struct {
		name  string
		rec   models.StreakRecord
		month calendar.Month
		want  []int
	}{
		{
			name:  "dates split by month",
			rec:   models.StreakRecord{ActiveDates: []string{"2026-09-25", "2026-10-02", "2026-10-03"}},
			month: october,
			want:  []int{2, 3},
		},
		{
			name:  "projection counts only for its month",
			rec:   models.StreakRecord{ActiveCalendarDays: []int{25}, ActiveMonth: "2026-09"},
			month: sep,
			want:  []int{25},
		},
		{
			name:  "projection of another month is ignored",
			rec:   models.StreakRecord{ActiveCalendarDays: []int{25}, ActiveMonth: "2026-09"},
			month: october,
			want:  []int{},
		},
		{
			name:  "days without a month belong to none",
			rec:   models.StreakRecord{ActiveCalendarDays: []int{9, 10}},
			month: october,
			want:  []int{},
		},
		{
			name:  "malformed dates are skipped",
			rec:   models.StreakRecord{ActiveDates: []string{"yesterday", "2026-10-32", "2026-10-05"}},
			month: october,
			want:  []int{5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, streaksync.ToggledDays(tt.rec, tt.month)); diff != "" {
				t.Errorf("ToggledDays %s (-want +got):\n%s", tt.month, diff)
			}
		})
	}
}

func TestToggle_StaysInItsMonth(t *testing.T) {
	sep := october.Prev()
	e := newEnv(t, time.Date(2026, time.September, 26, 12, 0, 0, 0, time.UTC))

	if _, err := e.sync.RecordCalendarToggle(e.ctx, runner, sep, 25, streaksync.Mark); err != nil {
		t.Fatalf("RecordCalendarToggle failed: %v", err)
	}

	st, err := e.at(today).LoadDashboardState(e.ctx, runner, october)
	if err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	if len(st.ActiveDays) != 0 {
		t.Errorf("september toggle shows in october: active %v", st.ActiveDays)
	}
	if st.Stats.CompletionRate != 0 {
		t.Errorf("completion: got %d, want 0", st.Stats.CompletionRate)
	}

	// When October 25 arrives it is still not done.
	oct25 := time.Date(2026, time.October, 25, 12, 0, 0, 0, time.UTC)
	st, err = e.at(oct25).LoadDashboardState(e.ctx, runner, october)
	if err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	if slices.Contains(st.ActiveDays, 25) {
		t.Errorf("october 25 completed without a toggle: active %v", st.ActiveDays)
	}

	st, err = e.at(today).LoadDashboardState(e.ctx, runner, sep)
	if err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	if diff := cmp.Diff([]int{25}, st.ActiveDays); diff != "" {
		t.Errorf("september keeps its toggle (-want +got):\n%s", diff)
	}
}

func TestToggle_KeepsOtherMonths(t *testing.T) {
	e := newEnv(t, today)

	if _, err := e.sync.RecordCalendarToggle(e.ctx, runner, october.Prev(), 30, streaksync.Mark); err != nil {
		t.Fatalf("mark september failed: %v", err)
	}
	res, err := e.sync.RecordCalendarToggle(e.ctx, runner, october, 1, streaksync.Mark)
	if err != nil {
		t.Fatalf("mark october failed: %v", err)
	}
	if diff := cmp.Diff([]int{1}, res.Toggles); diff != "" {
		t.Errorf("october toggles (-want +got):\n%s", diff)
	}

	p, _ := e.fx.Users.Get(e.ctx, "u1")
	if diff := cmp.Diff([]string{"2026-09-30", "2026-10-01"}, p.StreakData.ActiveDates); diff != "" {
		t.Errorf("stored dates (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, p.StreakData.ActiveCalendarDays); diff != "" {
		t.Errorf("current month days (-want +got):\n%s", diff)
	}
	if p.StreakData.ActiveMonth != "2026-10" {
		t.Errorf("active month: got %q, want 2026-10", p.StreakData.ActiveMonth)
	}

	res, err = e.sync.RecordCalendarToggle(e.ctx, runner, october.Prev(), 30, streaksync.Unmark)
	if err != nil {
		t.Fatalf("unmark september failed: %v", err)
	}
	if len(res.Toggles) != 0 {
		t.Errorf("september toggles after unmark: %v", res.Toggles)
	}
	p, _ = e.fx.Users.Get(e.ctx, "u1")
	if diff := cmp.Diff([]string{"2026-10-01"}, p.StreakData.ActiveDates); diff != "" {
		t.Errorf("stored dates after unmark (-want +got):\n%s", diff)
	}
}

func TestLoadDashboard_NoFutureDayActive(t *testing.T) {
	e := newEnv(t, today)
	e.fx.CreateProfile(e.ctx, "u1", october, 9, 10, 15, 20)

	st, err := e.sync.LoadDashboardState(e.ctx, runner, october)
	if err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	if diff := cmp.Diff([]int{9, 10}, st.ActiveDays); diff != "" {
		t.Errorf("active days (-want +got):\n%s", diff)
	}
	for _, d := range st.ActiveDays {
		if d > st.Today {
			t.Errorf("day %d reported active on day %d", d, st.Today)
		}
	}
	want := streaksync.Stats{CurrentStreak: 2, LongestStreak: 2, CompletionRate: 20}
	if diff := cmp.Diff(want, st.Stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestLoadDashboard_FutureMonthKeepsLiveStreak(t *testing.T) {
	e := newEnv(t, today)
	e.fx.CreateProfile(e.ctx, "u1", october, 9, 10)

	if _, err := e.sync.LoadDashboardState(e.ctx, runner, october); err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	skips := testutil.ToFloat64(e.metrics.StreakWriteSkips)

	st, err := e.sync.LoadDashboardState(e.ctx, runner, october.Next())
	if err != nil {
		t.Fatalf("LoadDashboardState failed: %v", err)
	}
	if st.StreakSaved {
		t.Error("a month that has not started must not write the streak")
	}
	if len(st.ActiveDays) != 0 || len(st.MissedDays) != 0 {
		t.Errorf("future month: got active %v missed %v", st.ActiveDays, st.MissedDays)
	}
	if got := testutil.ToFloat64(e.metrics.StreakWriteSkips); got != skips+1 {
		t.Errorf("write skips: got %v, want %v", got, skips+1)
	}

	p, _ := e.fx.Users.Get(e.ctx, "u1")
	if p.StreakData.CurrentStreak != 2 || p.StreakData.CompletionRate != 20 {
		t.Errorf("stored streak changed: got %+v", p.StreakData)
	}
}
