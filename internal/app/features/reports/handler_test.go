package reports_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/runtracker/internal/app/features/errors"
	"github.com/dalemusser/runtracker/internal/app/features/reports"
	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/dalemusser/runtracker/internal/app/system/paging"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/reading"
	"github.com/dalemusser/runtracker/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

var now = time.Date(2026, time.October, 10, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*reports.Handler, *testutil.Fixtures) {
	t.Helper()
	docs := docstore.NewMemory()
	fx := testutil.NewFixtures(t, docs)
	logger := zap.NewNop()
	sync := streaksync.New(docs, logger,
		streaksync.WithClock(func() time.Time { return now }),
		streaksync.WithLocation(time.UTC))
	return reports.NewHandler(sync, fx.Reports, uierrors.NewErrorLogger(logger), logger), fx
}

func withID(r *http.Request, id string) *http.Request {
	return testutil.WithChiURLParam(r, "id", id)
}

func TestHandleCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	body := map[string]any{
		"day_number":   "1",
		"book_title":   "Atomic Habits",
		"pages":        "1-20",
		"what":         "Identity-based habits",
		"action_items": []map[string]any{{"text": "Run at 6am"}},
	}
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewIdentifiedRequest(t, http.MethodPost, "/reports", "u1", body))
	rec.AssertStatus(t, http.StatusCreated)

	var res streaksync.NewReportResult
	rec.DecodeJSON(t, &res)
	if res.Report.ID == "" {
		t.Fatal("report id is empty")
	}
	if got, want := rec.Header().Get("Location"), "/reports/"+res.Report.ID; got != want {
		t.Errorf("Location: got %q, want %q", got, want)
	}
	if res.Streak == nil {
		t.Fatal("expected streak update")
	}
	if res.Streak.CurrentStreak != 1 || res.Streak.TotalReports != 1 {
		t.Errorf("streak: got %+v, want current 1 and 1 report", *res.Streak)
	}

	p, err := fx.Users.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff([]int{10}, p.StreakData.ActiveCalendarDays); diff != "" {
		t.Errorf("stored days (-want +got):\n%s", diff)
	}
}

func TestHandleCreate_MissingTitle(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewIdentifiedRequest(t, http.MethodPost, "/reports", "u1",
		map[string]any{"what": "no title"}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "book title is required")
}

func TestServeList_SearchAndOwnership(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateReport(ctx, "u1", "Atomic Habits", now.Add(-48*time.Hour))
	fx.CreateReport(ctx, "u1", "Deep Work", now.Add(-24*time.Hour))
	fx.CreateReport(ctx, "u2", "Atomic Habits", now)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports", "u1", nil))
	rec.AssertStatus(t, http.StatusOK)
	var all struct {
		Count   int             `json:"count"`
		Reports []models.Report `json:"reports"`
	}
	rec.DecodeJSON(t, &all)
	if all.Count != 2 || len(all.Reports) != 2 {
		t.Fatalf("count: got %d (%d reports), want 2", all.Count, len(all.Reports))
	}
	if all.Reports[0].BookTitle != "Deep Work" {
		t.Errorf("newest first: got %q", all.Reports[0].BookTitle)
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports?q=ATOMIC", "u1", nil))
	rec.AssertStatus(t, http.StatusOK)
	var found struct {
		Count int `json:"count"`
	}
	rec.DecodeJSON(t, &found)
	if found.Count != 1 {
		t.Errorf("search count: got %d, want 1", found.Count)
	}
}

func TestServeList_Paging(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	for i := 0; i < 5; i++ {
		fx.CreateReport(ctx, "u1", fmt.Sprintf("Book %d", i), now.Add(time.Duration(i)*time.Hour))
	}

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports?start=3&limit=2", "u1", nil))
	rec.AssertStatus(t, http.StatusOK)
	var got struct {
		Count   int             `json:"count"`
		Page    paging.Range    `json:"page"`
		Reports []models.Report `json:"reports"`
	}
	rec.DecodeJSON(t, &got)
	if got.Count != 5 {
		t.Errorf("count: got %d, want 5", got.Count)
	}
	// Newest first: Book 4, 3, 2, 1, 0.
	var titles []string
	for _, r := range got.Reports {
		titles = append(titles, r.BookTitle)
	}
	if diff := cmp.Diff([]string{"Book 2", "Book 1"}, titles); diff != "" {
		t.Errorf("page (-want +got):\n%s", diff)
	}
	want := paging.Range{Start: 3, End: 4, Total: 5, PrevStart: 1, NextStart: 5, HasPrev: true, HasNext: true}
	if diff := cmp.Diff(want, got.Page); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}
}

func TestServeStats(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateReport(ctx, "u1", "Atomic Habits", now)
	fx.CreateReport(ctx, "u1", "Deep Work", now)

	rec := testutil.NewRecorder()
	h.ServeStats(rec, testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports/stats", "u1", nil))
	rec.AssertStatus(t, http.StatusOK)

	var s reading.Summary
	rec.DecodeJSON(t, &s)
	if s.TotalReports != 2 || s.TotalPages != 20 || s.MostRecentDay != 1 {
		t.Errorf("summary: got reports=%d pages=%d day=%d, want 2/20/1", s.TotalReports, s.TotalPages, s.MostRecentDay)
	}
}

func TestServeReport_Access(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mine := fx.CreateReport(ctx, "u1", "Atomic Habits", now)
	theirs := fx.CreateReport(ctx, "u2", "Deep Work", now)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"own report", mine.ID, http.StatusOK},
		{"other user's report", theirs.ID, http.StatusForbidden},
		{"missing report", "nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			req := withID(testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports/"+tt.id, "u1", nil), tt.id)
			h.ServeReport(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestHandleEdit(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rep := fx.CreateReport(ctx, "u1", "Atomic Habits", now.Add(-time.Hour))

	body := map[string]any{
		"day_number": "2",
		"book_title": "Atomic Habits (2nd read)",
		"pages":      "21-40",
		"pdca":       map[string]any{"did_planned_happen": true, "adjustments": "earlier start"},
	}
	rec := testutil.NewRecorder()
	h.HandleEdit(rec, withID(testutil.NewIdentifiedRequest(t, http.MethodPut, "/reports/"+rep.ID, "u1", body), rep.ID))
	rec.AssertStatus(t, http.StatusOK)

	got, err := fx.Reports.Get(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.BookTitle != "Atomic Habits (2nd read)" || got.Pages != "21-40" {
		t.Errorf("edited fields: got %q %q", got.BookTitle, got.Pages)
	}
	if !got.PDCA.DidPlannedHappen || got.PDCA.Adjustments != "earlier start" {
		t.Errorf("pdca: got %+v", got.PDCA)
	}
	if !got.CreatedAt.Equal(rep.CreatedAt) {
		t.Errorf("created_at changed: got %v, want %v", got.CreatedAt, rep.CreatedAt)
	}
}

func TestHandleEdit_OtherUser(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rep := fx.CreateReport(ctx, "u2", "Deep Work", now)

	rec := testutil.NewRecorder()
	h.HandleEdit(rec, withID(testutil.NewIdentifiedRequest(t, http.MethodPut, "/reports/"+rep.ID, "u1",
		map[string]any{"book_title": "mine now"}), rep.ID))
	rec.AssertStatus(t, http.StatusForbidden)

	got, err := fx.Reports.Get(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.BookTitle != "Deep Work" {
		t.Errorf("other user's report was edited: %q", got.BookTitle)
	}
}

func TestHandleDelete(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rep := fx.CreateReport(ctx, "u1", "Atomic Habits", now)

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewIdentifiedRequest(t, http.MethodDelete, "/reports/"+rep.ID, "u1", nil), rep.ID))
	rec.AssertStatus(t, http.StatusNoContent)

	if _, err := fx.Reports.Get(ctx, rep.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
}

func TestHandleActionItem(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rep, err := fx.Reports.Create(ctx, models.Report{
		UserID:      "u1",
		BookTitle:   "Deep Work",
		ActionItems: []models.ActionItem{{Text: "a"}, {Text: "b"}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	req := withID(testutil.NewIdentifiedRequest(t, http.MethodPost, "/", "u1", map[string]bool{"completed": true}), rep.ID)
	req = testutil.WithChiURLParam(req, "index", "1")
	rec := testutil.NewRecorder()
	h.HandleActionItem(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	got, err := fx.Reports.Get(ctx, rep.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ActionItems[0].Completed || !got.ActionItems[1].Completed {
		t.Errorf("action items: got %+v, want only the second completed", got.ActionItems)
	}

	req = withID(testutil.NewIdentifiedRequest(t, http.MethodPost, "/", "u1", map[string]bool{"completed": true}), rep.ID)
	req = testutil.WithChiURLParam(req, "index", "5")
	rec = testutil.NewRecorder()
	h.HandleActionItem(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeCSV(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateReport(ctx, "u1", "Atomic, Habits", now)

	rec := testutil.NewRecorder()
	h.ServeCSV(rec, testutil.NewIdentifiedRequest(t, http.MethodGet, "/reports/reports.csv", "u1", nil))
	rec.AssertStatus(t, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "reports_2026-10-10.csv") {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines: got %d, want 2", len(lines))
	}
	for _, want := range []string{`"Atomic, Habits"`, ",1-10,10,"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("csv row %q missing %q", lines[1], want)
		}
	}
}

func TestRoutes_DeviceIdentity(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateReport(ctx, "device-7", "Atomic Habits", now)

	sm, err := auth.NewSessionManager(auth.Options{DeviceID: "device-7"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	srv := sm.LoadIdentity(reports.Routes(h, sm))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total_reports":1`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}
