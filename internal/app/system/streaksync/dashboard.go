package streaksync

import (
	"context"

	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sections of a dashboard load that can fail independently.
const (
	SectionProfile     = "profile"
	SectionReports     = "reports"
	SectionStreakWrite = "streak_write"
)

// Stats are the streak numbers shown on the dashboard.
type Stats struct {
	CurrentStreak  int `json:"current_streak"`
	LongestStreak  int `json:"longest_streak"`
	CompletionRate int `json:"completion_rate"`
	TotalReports   int `json:"total_reports"`
}

func statsOf(rec models.StreakRecord) Stats {
	return Stats{
		CurrentStreak:  rec.CurrentStreak,
		LongestStreak:  rec.LongestStreak,
		CompletionRate: rec.CompletionRate,
		TotalReports:   rec.TotalReports,
	}
}

// DashboardState is everything the dashboard renders for one month.
type DashboardState struct {
	Profile        models.Profile `json:"profile"`
	Month          calendar.Month `json:"month"`
	DaysInMonth    int            `json:"days_in_month"`
	FirstWeekday   int            `json:"first_weekday"`
	Grid           []int          `json:"grid"`
	IsCurrentMonth bool           `json:"is_current_month"`
	Today          int            `json:"today,omitempty"`

	ActiveDays []int `json:"active_days"`
	MissedDays []int `json:"missed_days"`
	ReportDays []int `json:"report_days"`

	Stats         Stats           `json:"stats"`
	RecentReports []models.Report `json:"recent_reports"`

	ProfileCreated bool     `json:"profile_created"`
	StreakSaved    bool     `json:"streak_saved"`
	Degraded       bool     `json:"degraded"`
	Errors         []string `json:"errors,omitempty"`
}

func (st *DashboardState) fail(section string) {
	st.Degraded = true
	st.Errors = append(st.Errors, section)
}

// LoadDashboardState reads the profile (creating it if absent) and all
// of the user's reports, derives the day sets and stats for viewed, and
// writes the streak record back when a computed field changed. Viewing
// a month that has not started never writes.
//
// A failed profile or report fetch does not fail the call: the section
// falls back to defaults, the state is marked Degraded and no write-back
// happens. Only invalid input returns an error.
func (s *Synchronizer) LoadDashboardState(ctx context.Context, u User, viewed calendar.Month) (DashboardState, error) {
	if err := validateUser(u); err != nil {
		return DashboardState{}, err
	}
	if err := validateMonth(viewed); err != nil {
		return DashboardState{}, err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Sync(), s.log, "load dashboard")
	defer cancel()

	now := s.Now()
	st := DashboardState{
		Month:          viewed,
		DaysInMonth:    viewed.Days(),
		FirstWeekday:   calendar.FirstWeekday(viewed.Year, viewed.Month),
		Grid:           calendar.Grid(viewed.Year, viewed.Month),
		IsCurrentMonth: viewed.Compare(now) == 0,
		RecentReports:  []models.Report{},
	}
	if st.IsCurrentMonth {
		st.Today = now.Day()
	}

	var (
		profile    models.Profile
		created    bool
		profileErr error
		reports    []models.Report
		reportsErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		profile, created, profileErr = s.ensureProfile(ctx, u, now)
		return nil
	})
	g.Go(func() error {
		reports, reportsErr = s.listReports(ctx, u.ID)
		return nil
	})
	_ = g.Wait()

	log := s.log.With(zap.String("user_id", u.ID), zap.Stringer("month", viewed))
	if profileErr != nil {
		log.Warn("dashboard: profile unavailable", zap.Error(profileErr))
		st.fail(SectionProfile)
		profile = userstore.NewProfile(u.ID, u.Name, u.Email, u.PhotoURL, now.UTC())
	}
	if reportsErr != nil {
		log.Warn("dashboard: reports unavailable", zap.Error(reportsErr))
		st.fail(SectionReports)
		reports = nil
	}
	st.ProfileCreated = created

	if len(reports) > s.recent {
		st.RecentReports = reports[:s.recent]
	} else if len(reports) > 0 {
		st.RecentReports = reports
	}

	stored := profile.StreakData
	view := viewMonth(viewed, ToggledDays(stored, viewed), reports, now, s.loc)
	st.ReportDays = view.reportDays
	st.ActiveDays = view.active
	st.MissedDays = calendar.MissedDays(viewed, view.active, now)

	res := view.streak.Merge(stored.LongestStreak)
	next := stored
	next.CurrentStreak = res.Current
	next.LongestStreak = res.Longest
	next.CompletionRate = view.completion
	next.TotalReports = len(reports)
	st.Stats = statsOf(next)

	switch {
	case st.Degraded:
		s.metrics.DashboardDegraded.Inc()
	case viewed.Compare(now) > 0, statsOf(stored) == st.Stats:
		// a month that has not started never overwrites the live streak
		s.metrics.StreakWriteSkips.Inc()
	default:
		err := s.saveStreakFields(ctx, u.ID, userstore.StreakFields{
			CurrentStreak:  &next.CurrentStreak,
			LongestStreak:  &next.LongestStreak,
			CompletionRate: &next.CompletionRate,
			TotalReports:   &next.TotalReports,
		})
		if err != nil {
			log.Warn("dashboard: streak write-back failed", zap.Error(err))
			st.fail(SectionStreakWrite)
			s.metrics.DashboardDegraded.Inc()
		} else {
			st.StreakSaved = true
		}
	}
	if st.StreakSaved {
		profile.StreakData = next
	}
	st.Profile = profile

	result := metrics.ResultOK
	if st.Degraded {
		result = metrics.ResultDegraded
	}
	s.metrics.SyncOps.WithLabelValues("load_dashboard", result).Inc()
	return st, nil
}
