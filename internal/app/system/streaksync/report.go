package streaksync

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/runtracker/internal/app/system/htmlsanitize"
	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/streak"
	"go.uber.org/zap"
)

// ReportInput is a report as submitted by the user.
type ReportInput struct {
	DayNumber   string              `json:"day_number"`
	BookTitle   string              `json:"book_title"`
	Date        string              `json:"date"`
	Pages       string              `json:"pages"`
	What        string              `json:"what"`
	SoWhat      string              `json:"so_what"`
	PDCA        models.PDCA         `json:"pdca"`
	ActionItems []models.ActionItem `json:"action_items"`
}

// Clean strips markup from every text field, drops blank action items
// and checks that a book title is present.
func (in ReportInput) Clean() (ReportInput, error) {
	out := ReportInput{
		DayNumber: htmlsanitize.Text(in.DayNumber),
		BookTitle: htmlsanitize.Text(in.BookTitle),
		Date:      htmlsanitize.Text(in.Date),
		Pages:     htmlsanitize.Text(in.Pages),
		What:      htmlsanitize.Text(in.What),
		SoWhat:    htmlsanitize.Text(in.SoWhat),
		PDCA: models.PDCA{
			DidPlannedHappen: in.PDCA.DidPlannedHappen,
			HadUrgency:       in.PDCA.HadUrgency,
			ManagedTime:      in.PDCA.ManagedTime,
			Adjustments:      htmlsanitize.Text(in.PDCA.Adjustments),
		},
		ActionItems: []models.ActionItem{},
	}
	for _, it := range in.ActionItems {
		text := htmlsanitize.Text(it.Text)
		if text == "" {
			continue
		}
		out.ActionItems = append(out.ActionItems, models.ActionItem{Text: text, Completed: it.Completed})
	}
	if out.BookTitle == "" {
		return ReportInput{}, invalid("book title is required")
	}
	return out, nil
}

// NewReportResult is the stored report and, when the follow-up streak
// update succeeded, the streak record it wrote.
type NewReportResult struct {
	Report models.Report        `json:"report"`
	Streak *models.StreakRecord `json:"streak,omitempty"`
}

// RecordNewReport stores a report for u stamped with the current time,
// then updates the streak record: today joins active_calendar_days, the
// current streak follows the last-active-date rule, completion is
// recomputed over this month's reports and total_reports grows by one.
//
// The streak update is best effort. Its failure is logged and leaves
// Streak nil; the stored report is still returned.
func (s *Synchronizer) RecordNewReport(ctx context.Context, u User, in ReportInput) (NewReportResult, error) {
	if err := validateUser(u); err != nil {
		return NewReportResult{}, err
	}
	clean, err := in.Clean()
	if err != nil {
		return NewReportResult{}, err
	}

	now := s.Now()
	wctx, cancel := timeouts.WithTimeout(ctx, timeouts.Write(), s.log, "create report")
	created, err := s.reports.Create(wctx, models.Report{
		UserID:      u.ID,
		DayNumber:   clean.DayNumber,
		BookTitle:   clean.BookTitle,
		Date:        clean.Date,
		Pages:       clean.Pages,
		What:        clean.What,
		SoWhat:      clean.SoWhat,
		PDCA:        clean.PDCA,
		ActionItems: clean.ActionItems,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	})
	cancel()
	if err != nil {
		s.metrics.SyncOps.WithLabelValues("new_report", metrics.ResultError).Inc()
		return NewReportResult{}, fmt.Errorf("create report: %w", err)
	}

	res := NewReportResult{Report: created}
	rec, err := s.advanceStreak(ctx, u, now)
	if err != nil {
		s.log.Warn("streak update after new report failed",
			zap.String("user_id", u.ID),
			zap.String("report_id", created.ID),
			zap.Error(err))
		s.metrics.SyncOps.WithLabelValues("new_report", metrics.ResultDegraded).Inc()
		return res, nil
	}
	res.Streak = &rec
	s.metrics.SyncOps.WithLabelValues("new_report", metrics.ResultOK).Inc()
	return res, nil
}

func (s *Synchronizer) advanceStreak(ctx context.Context, u User, now time.Time) (models.StreakRecord, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Sync(), s.log, "advance streak")
	defer cancel()

	profile, _, err := s.ensureProfile(ctx, u, now)
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("load profile: %w", err)
	}
	reports, err := s.listReports(ctx, u.ID)
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("list reports: %w", err)
	}

	month := calendar.Of(now)
	rec := profile.StreakData
	rec = withToggledDays(rec, month, append(ToggledDays(rec, month), now.Day()), now)
	rec.CurrentStreak = streak.Advance(rec.CurrentStreak, rec.LastActiveDate, now)
	today := streak.DateKey(now)
	rec.LastActiveDate = &today
	rec.LongestStreak = max(rec.LongestStreak, rec.CurrentStreak)

	rec.CompletionRate = viewMonth(month, ToggledDays(rec, month), reports, now, s.loc).completion
	rec.TotalReports++

	err = s.withRetry(ctx, "update_streak", timeouts.Write(), func(ctx context.Context) error {
		return s.users.UpdateStreak(ctx, u.ID, rec)
	})
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("save streak: %w", err)
	}
	return rec, nil
}
