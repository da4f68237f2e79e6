// internal/app/store/reports/reportstore.go
package reportstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/domain/models"
)

// Collection holds report documents.
const Collection = "reports"

// ErrActionItemRange is returned when an action item index does not exist.
var ErrActionItemRange = errors.New("action item index out of range")

// Store reads and writes reports.
type Store struct {
	docs docstore.Store
	now  func() time.Time
}

// New creates a report store over docs.
func New(docs docstore.Store) *Store {
	return &Store{docs: docs, now: time.Now}
}

// WithClock returns a copy of the store that stamps times from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

// Create stores r under a generated id and returns it with ID set.
// CreatedAt/UpdatedAt default to now when zero.
func (s *Store) Create(ctx context.Context, r models.Report) (models.Report, error) {
	now := s.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if r.ActionItems == nil {
		r.ActionItems = []models.ActionItem{}
	}
	r.ID = ""
	id, err := s.docs.Add(ctx, Collection, r)
	if err != nil {
		return models.Report{}, err
	}
	r.ID = id
	return r, nil
}

// Get loads one report. Returns docstore.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.Report, error) {
	var r models.Report
	if err := s.docs.Get(ctx, Collection, id, &r); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

// ListByUser returns the user's reports, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	var out []models.Report
	if err := s.docs.Query(ctx, Collection, docstore.Filter{"user_id": userID}, &out); err != nil {
		return nil, err
	}
	SortNewestFirst(out)
	return out, nil
}

// SortNewestFirst orders reports by CreatedAt descending, ties by id.
func SortNewestFirst(rs []models.Report) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.After(rs[j].CreatedAt)
		}
		return rs[i].ID > rs[j].ID
	})
}

// Edit holds the user-editable fields of a report.
type Edit struct {
	DayNumber   string
	BookTitle   string
	Date        string
	Pages       string
	What        string
	SoWhat      string
	PDCA        models.PDCA
	ActionItems []models.ActionItem
}

// Update replaces the editable fields and bumps updated_at.
func (s *Store) Update(ctx context.Context, id string, e Edit) error {
	items := e.ActionItems
	if items == nil {
		items = []models.ActionItem{}
	}
	return s.docs.Update(ctx, Collection, id, docstore.Fields{
		"day_number":   e.DayNumber,
		"book_title":   e.BookTitle,
		"date":         e.Date,
		"pages":        e.Pages,
		"what":         e.What,
		"so_what":      e.SoWhat,
		"pdca":         e.PDCA,
		"action_items": items,
		"updated_at":   s.now().UTC(),
	})
}

// SetActionItem marks the action item at index completed or not and
// returns the updated list.
func (s *Store) SetActionItem(ctx context.Context, id string, index int, completed bool) ([]models.ActionItem, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(r.ActionItems) {
		return nil, ErrActionItemRange
	}
	r.ActionItems[index].Completed = completed
	err = s.docs.Update(ctx, Collection, id, docstore.Fields{
		"action_items": r.ActionItems,
		"updated_at":   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return r.ActionItems, nil
}

// Delete removes a report.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, Collection, id)
}

// Search keeps reports whose title, summary or reflection contains q,
// case-insensitively. An empty q keeps everything.
func Search(rs []models.Report, q string) []models.Report {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rs
	}
	out := make([]models.Report, 0, len(rs))
	for _, r := range rs {
		if strings.Contains(strings.ToLower(r.BookTitle), q) ||
			strings.Contains(strings.ToLower(r.What), q) ||
			strings.Contains(strings.ToLower(r.SoWhat), q) {
			out = append(out, r)
		}
	}
	return out
}
