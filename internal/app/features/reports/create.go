// internal/app/features/reports/create.go
package reports

import (
	"net/http"

	"github.com/dalemusser/runtracker/internal/app/features/shared"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"go.uber.org/zap"
)

// HandleCreate handles POST /reports. The report is answered with 201
// even when the follow-up streak update failed; streak is then absent.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	var in streaksync.ReportInput
	if err := shared.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "create report: bad body", err)
		return
	}

	res, err := h.Sync.RecordNewReport(r.Context(), u, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "create report failed", err)
		return
	}
	h.Log.Info("report created",
		zap.String("user_id", u.ID),
		zap.String("report_id", res.Report.ID),
		zap.Bool("streak_updated", res.Streak != nil))
	w.Header().Set("Location", "/reports/"+res.Report.ID)
	shared.WriteJSON(w, http.StatusCreated, res)
}
