// Package streaksync ties the streak and completion calculators to the
// document store. It is the only writer of a profile's streak_data.
//
// Every operation reads the profile and the user's reports, derives the
// active and missed day sets for a month, and writes the streak record
// back. Reads are retried a bounded number of times on transient store
// failures; the dashboard load degrades section by section instead of
// failing.
package streaksync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/streak"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrInvalidInput is returned for requests that can never succeed:
// an empty user id, a month outside 1..12, a day outside the month.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Defaults.
const (
	DefaultAttempts    = 3
	DefaultRetryBase   = 300 * time.Millisecond
	DefaultRecentLimit = 3
)

// User identifies who an operation acts for. Name, Email and PhotoURL
// seed the profile when it is created.
type User struct {
	ID       string
	Name     string
	Email    string
	PhotoURL string
}

// Synchronizer runs the streak read-modify-write cycles.
type Synchronizer struct {
	users   *userstore.Store
	reports *reportstore.Store
	log     *zap.Logger
	metrics *metrics.Metrics

	clock    func() time.Time
	loc      *time.Location
	attempts int
	base     time.Duration
	recent   int
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.clock = now }
}

// WithLocation sets the zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Synchronizer) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRetry sets the total attempts per store read and the first backoff.
func WithRetry(attempts int, base time.Duration) Option {
	return func(s *Synchronizer) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if base > 0 {
			s.base = base
		}
	}
}

// WithRecentLimit sets how many recent reports the dashboard returns.
func WithRecentLimit(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.recent = n
		}
	}
}

// WithMetrics records operation counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New builds a Synchronizer over docs.
func New(docs docstore.Store, logger *zap.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		log:      logger,
		clock:    time.Now,
		loc:      time.Local,
		attempts: DefaultAttempts,
		base:     DefaultRetryBase,
		recent:   DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	utc := func() time.Time { return s.clock().UTC() }
	s.users = userstore.New(docs).WithClock(utc)
	s.reports = reportstore.New(docs).WithClock(utc)
	return s
}

// Now returns the current time in the synchronizer's location.
func (s *Synchronizer) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location returns the zone used for day boundaries.
func (s *Synchronizer) Location() *time.Location { return s.loc }

// withRetry runs fn under a per-attempt timeout, retrying transient
// store failures with exponential backoff.
func (s *Synchronizer) withRetry(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(s.attempts-1), retry.NewExponential(s.base))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.StoreRetries.WithLabelValues(op).Inc()
			s.log.Debug("retrying store call", zap.String("op", op), zap.Int("attempt", attempt))
		}
		actx, cancel := timeouts.WithTimeout(ctx, timeout, s.log, op)
		defer cancel()
		err := fn(actx)
		if docstore.IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Synchronizer) ensureProfile(ctx context.Context, u User, now time.Time) (p models.Profile, created bool, err error) {
	seed := userstore.NewProfile(u.ID, u.Name, u.Email, u.PhotoURL, now.UTC())
	err = s.withRetry(ctx, "ensure_profile", timeouts.Read(), func(ctx context.Context) error {
		var e error
		p, created, e = s.users.Ensure(ctx, seed)
		return e
	})
	if created {
		s.log.Info("created profile", zap.String("user_id", u.ID))
	}
	return p, created, err
}

func (s *Synchronizer) listReports(ctx context.Context, userID string) ([]models.Report, error) {
	var out []models.Report
	err := s.withRetry(ctx, "list_reports", timeouts.Query(), func(ctx context.Context) error {
		var e error
		out, e = s.reports.ListByUser(ctx, userID)
		return e
	})
	return out, err
}

func (s *Synchronizer) saveStreakFields(ctx context.Context, userID string, f userstore.StreakFields) error {
	return s.withRetry(ctx, "update_streak", timeouts.Write(), func(ctx context.Context) error {
		return s.users.UpdateStreakFields(ctx, userID, f)
	})
}

// ReportDays returns the distinct days of m on which reports were created.
func ReportDays(reports []models.Report, m calendar.Month, loc *time.Location) []int {
	var days []int
	for _, r := range reports {
		if m.Contains(r.CreatedAt, loc) {
			days = append(days, r.CreatedAt.In(loc).Day())
		}
	}
	return calendar.Union(days)
}

// inMonth keeps the days that exist in m.
func inMonth(days []int, m calendar.Month) []int {
	n := m.Days()
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d >= 1 && d <= n {
			out = append(out, d)
		}
	}
	return out
}

// computeStreak picks the calculator mode for the viewed month: day
// numbers for the current month, full dates for a past month. A future
// month has no streak.
func computeStreak(m calendar.Month, active []int, now time.Time) streak.Result {
	switch m.Compare(now) {
	case 0:
		return streak.SameMonth(active, now.Day(), true)
	case -1:
		dates := make([]time.Time, 0, len(active))
		for _, d := range active {
			dates = append(dates, m.Date(d, now.Location()))
		}
		return streak.CrossMonth(dates, now)
	default:
		return streak.Result{}
	}
}

func validateUser(u User) error {
	if u.ID == "" {
		return invalid("user id is empty")
	}
	return nil
}

func validateMonth(m calendar.Month) error {
	if !m.Valid() {
		return invalid("month %d out of range 1..12", int(m.Month))
	}
	return nil
}
