// internal/app/features/reports/reportscsv.go
package reports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/runtracker/internal/app/features/shared"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/reading"
	"go.uber.org/zap"
)

// ServeCSV handles GET /reports/reports.csv and streams every report
// of the caller, newest first.
func (h *Handler) ServeCSV(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "export reports")
	defer cancel()

	all, err := h.Reports.ListByUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "export reports failed", err)
		return
	}

	filename := fmt.Sprintf("reports_%s.csv", h.Sync.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// BOM so spreadsheet apps pick UTF-8
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})

	cw := csv.NewWriter(w)

	_ = cw.Write([]string{"created_at", "day_number", "book_title", "date", "pages", "page_count",
		"what", "so_what", "planned_happened", "urgency", "managed_time", "adjustments",
		"action_items_done", "action_items_total"})
	for _, rep := range all {
		done := 0
		for _, it := range rep.ActionItems {
			if it.Completed {
				done++
			}
		}
		_ = cw.Write([]string{
			rep.CreatedAt.UTC().Format(time.RFC3339),
			rep.DayNumber,
			rep.BookTitle,
			rep.Date,
			rep.Pages,
			strconv.Itoa(reading.PageCount(rep.Pages)),
			rep.What,
			rep.SoWhat,
			strconv.FormatBool(rep.PDCA.DidPlannedHappen),
			strconv.FormatBool(rep.PDCA.HadUrgency),
			strconv.FormatBool(rep.PDCA.ManagedTime),
			rep.PDCA.Adjustments,
			strconv.Itoa(done),
			strconv.Itoa(len(rep.ActionItems)),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.Log.Warn("csv export write failed", zap.String("user_id", u.ID), zap.Error(err))
	}
}
