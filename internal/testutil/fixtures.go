package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures creates test data in a document store.
type Fixtures struct {
	t       *testing.T
	docs    docstore.Store
	Users   *userstore.Store
	Reports *reportstore.Store
}

// NewFixtures wraps docs. Pass nil for a fresh in-memory store.
func NewFixtures(t *testing.T, docs docstore.Store) *Fixtures {
	t.Helper()
	if docs == nil {
		docs = docstore.NewMemory()
	}
	return &Fixtures{
		t:       t,
		docs:    docs,
		Users:   userstore.New(docs),
		Reports: reportstore.New(docs),
	}
}

// Docs returns the underlying store.
func (f *Fixtures) Docs() docstore.Store { return f.docs }

// CreateProfile stores a profile for userID with the given days of month
// toggled as complete.
func (f *Fixtures) CreateProfile(ctx context.Context, userID string, month calendar.Month, activeDays ...int) models.Profile {
	f.t.Helper()
	p := userstore.NewProfile(userID, "Test Runner", userID+"@test.com", "", time.Now().UTC())
	if activeDays != nil {
		p.StreakData.ActiveMonth = month.String()
		p.StreakData.ActiveCalendarDays = activeDays
		for _, d := range activeDays {
			p.StreakData.ActiveDates = append(p.StreakData.ActiveDates, month.Date(d, time.UTC).Format("2006-01-02"))
		}
	}
	if err := f.Users.Create(ctx, p); err != nil {
		f.t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

// CreateReport stores a report for userID created at the given time.
func (f *Fixtures) CreateReport(ctx context.Context, userID, title string, createdAt time.Time) models.Report {
	f.t.Helper()
	r, err := f.Reports.Create(ctx, models.Report{
		UserID:    userID,
		BookTitle: title,
		DayNumber: "1",
		Pages:     "1-10",
		CreatedAt: createdAt,
	})
	if err != nil {
		f.t.Fatalf("failed to create report: %v", err)
	}
	return r
}
