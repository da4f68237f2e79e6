// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/domain/models"
)

// Collection holds one profile document per user, keyed by user id.
const Collection = "users"

// Store reads and writes user profiles.
type Store struct {
	docs docstore.Store
	now  func() time.Time
}

// New creates a profile store over docs.
func New(docs docstore.Store) *Store {
	return &Store{docs: docs, now: time.Now}
}

// WithClock returns a copy of the store that stamps times from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// NewProfile returns a profile with a zeroed streak record.
func NewProfile(id, name, email, photoURL string, now time.Time) models.Profile {
	return models.Profile{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		PhotoURL: photoURL,
		StreakData: models.StreakRecord{
			ActiveCalendarDays: []int{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Get loads a profile. Returns docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.Profile, error) {
	var p models.Profile
	if err := s.docs.Get(ctx, Collection, id, &p); err != nil {
		return models.Profile{}, err
	}
	if p.StreakData.ActiveCalendarDays == nil {
		p.StreakData.ActiveCalendarDays = []int{}
	}
	return p, nil
}

// Create inserts p. An existing profile is never overwritten;
// docstore.ErrExists is returned instead.
func (s *Store) Create(ctx context.Context, p models.Profile) error {
	if p.ID == "" {
		return errors.New("userstore: profile id is empty")
	}
	return s.docs.Insert(ctx, Collection, p.ID, p)
}

// Ensure returns the stored profile for seed.ID, creating it from seed
// when absent. created reports whether this call wrote it. A concurrent
// create that wins the race is read back instead of overwritten.
func (s *Store) Ensure(ctx context.Context, seed models.Profile) (p models.Profile, created bool, err error) {
	p, err = s.Get(ctx, seed.ID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return models.Profile{}, false, err
	}

	err = s.Create(ctx, seed)
	switch {
	case err == nil:
		return seed, true, nil
	case errors.Is(err, docstore.ErrExists):
		p, err = s.Get(ctx, seed.ID)
		return p, false, err
	default:
		return models.Profile{}, false, err
	}
}

// UpdateStreak replaces the whole streak record.
func (s *Store) UpdateStreak(ctx context.Context, id string, rec models.StreakRecord) error {
	if rec.ActiveCalendarDays == nil {
		rec.ActiveCalendarDays = []int{}
	}
	return s.docs.Update(ctx, Collection, id, docstore.Fields{
		"streak_data": rec,
		"updated_at":  s.now().UTC(),
	})
}

// StreakFields names individual streak record fields for UpdateStreakFields.
type StreakFields struct {
	CurrentStreak      *int
	LongestStreak      *int
	CompletionRate     *int
	TotalReports       *int
	ActiveCalendarDays []int
	ActiveMonth        *string
	ActiveDates        []string
}

// UpdateStreakFields writes only the non-nil fields of f.
func (s *Store) UpdateStreakFields(ctx context.Context, id string, f StreakFields) error {
	fields := docstore.Fields{"updated_at": s.now().UTC()}
	if f.CurrentStreak != nil {
		fields["streak_data.current_streak"] = *f.CurrentStreak
	}
	if f.LongestStreak != nil {
		fields["streak_data.longest_streak"] = *f.LongestStreak
	}
	if f.CompletionRate != nil {
		fields["streak_data.completion_rate"] = *f.CompletionRate
	}
	if f.TotalReports != nil {
		fields["streak_data.total_reports"] = *f.TotalReports
	}
	if f.ActiveCalendarDays != nil {
		fields["streak_data.active_calendar_days"] = f.ActiveCalendarDays
	}
	if f.ActiveMonth != nil {
		fields["streak_data.active_month"] = *f.ActiveMonth
	}
	if f.ActiveDates != nil {
		fields["streak_data.active_dates"] = f.ActiveDates
	}
	return s.docs.Update(ctx, Collection, id, fields)
}

// UpdateName sets the display name.
func (s *Store) UpdateName(ctx context.Context, id, name string) error {
	return s.docs.Update(ctx, Collection, id, docstore.Fields{
		"name":       strings.TrimSpace(name),
		"updated_at": s.now().UTC(),
	})
}

// UpdateGoal sets the user's 90-day goal text.
func (s *Store) UpdateGoal(ctx context.Context, id, goal string) error {
	return s.docs.Update(ctx, Collection, id, docstore.Fields{
		"goal":       strings.TrimSpace(goal),
		"updated_at": s.now().UTC(),
	})
}
