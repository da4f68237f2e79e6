package streaksync

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"go.uber.org/zap"
)

// Action is a calendar toggle.
type Action string

const (
	Mark   Action = "mark"
	Unmark Action = "unmark"
)

// ParseAction validates a toggle action name.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case Mark, Unmark:
		return Action(s), nil
	default:
		return "", invalid("action %q must be mark or unmark", s)
	}
}

// ToggleResult is the calendar after a toggle.
type ToggleResult struct {
	Day            int    `json:"day"`
	Action         Action `json:"action"`
	Toggles        []int  `json:"toggles"`
	ActiveDays     []int  `json:"active_days"`
	MissedDays     []int  `json:"missed_days"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	CompletionRate int    `json:"completion_rate"`
}

// RecordCalendarToggle marks or unmarks day of viewed as complete and
// persists current_streak, longest_streak and the toggled dates. Toggles
// are kept per month; other months are untouched.
//
// Marking twice is the same as marking once. Unmarking a day that also
// has a report leaves it active. Days after today cannot be toggled.
func (s *Synchronizer) RecordCalendarToggle(ctx context.Context, u User, viewed calendar.Month, day int, action Action) (ToggleResult, error) {
	if err := validateUser(u); err != nil {
		return ToggleResult{}, err
	}
	if err := validateMonth(viewed); err != nil {
		return ToggleResult{}, err
	}
	if _, err := ParseAction(string(action)); err != nil {
		return ToggleResult{}, err
	}
	if day < 1 || day > viewed.Days() {
		return ToggleResult{}, invalid("day %d out of range 1..%d", day, viewed.Days())
	}
	now := s.Now()
	switch viewed.Compare(now) {
	case 1:
		return ToggleResult{}, invalid("month %s has not started", viewed)
	case 0:
		if day > now.Day() {
			return ToggleResult{}, invalid("day %d is in the future", day)
		}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Sync(), s.log, "calendar toggle")
	defer cancel()

	fail := func(err error) (ToggleResult, error) {
		s.metrics.SyncOps.WithLabelValues("calendar_toggle", metrics.ResultError).Inc()
		return ToggleResult{}, err
	}

	profile, _, err := s.ensureProfile(ctx, u, now)
	if err != nil {
		return fail(fmt.Errorf("load profile: %w", err))
	}
	reports, err := s.listReports(ctx, u.ID)
	if err != nil {
		return fail(fmt.Errorf("list reports: %w", err))
	}

	toggles := ToggledDays(profile.StreakData, viewed)
	if action == Mark {
		toggles = calendar.Union(toggles, []int{day})
	} else {
		toggles = calendar.Without(toggles, day)
	}

	view := viewMonth(viewed, toggles, reports, now, s.loc)
	res := view.streak.Merge(profile.StreakData.LongestStreak)
	next := withToggledDays(profile.StreakData, viewed, toggles, now)

	err = s.saveStreakFields(ctx, u.ID, userstore.StreakFields{
		CurrentStreak:      &res.Current,
		LongestStreak:      &res.Longest,
		ActiveCalendarDays: next.ActiveCalendarDays,
		ActiveMonth:        &next.ActiveMonth,
		ActiveDates:        next.ActiveDates,
	})
	if err != nil {
		return fail(fmt.Errorf("save streak: %w", err))
	}

	s.log.Debug("calendar toggled",
		zap.String("user_id", u.ID),
		zap.Stringer("month", viewed),
		zap.Int("day", day),
		zap.String("action", string(action)),
		zap.Int("current_streak", res.Current))
	s.metrics.SyncOps.WithLabelValues("calendar_toggle", metrics.ResultOK).Inc()

	return ToggleResult{
		Day:            day,
		Action:         action,
		Toggles:        toggles,
		ActiveDays:     view.active,
		MissedDays:     calendar.MissedDays(viewed, view.active, now),
		CurrentStreak:  res.Current,
		LongestStreak:  res.Longest,
		CompletionRate: view.completion,
	}, nil
}
