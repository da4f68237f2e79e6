// internal/app/features/reports/detail.go
package reports

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/runtracker/internal/app/features/shared"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeReport handles GET /reports/{id}.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := h.owned(w, r)
	if !ok {
		return
	}
	shared.WriteJSON(w, http.StatusOK, rep)
}

// HandleEdit handles PUT /reports/{id}. The body has the same shape as
// a new report and replaces every editable field.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	u, rep, ok := h.owned(w, r)
	if !ok {
		return
	}
	var in streaksync.ReportInput
	if err := shared.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Respond(w, r, "edit report: bad body", err)
		return
	}
	clean, err := in.Clean()
	if err != nil {
		h.ErrLog.Respond(w, r, "edit report: invalid", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "edit report")
	defer cancel()

	err = h.Reports.Update(ctx, rep.ID, reportstore.Edit{
		DayNumber:   clean.DayNumber,
		BookTitle:   clean.BookTitle,
		Date:        clean.Date,
		Pages:       clean.Pages,
		What:        clean.What,
		SoWhat:      clean.SoWhat,
		PDCA:        clean.PDCA,
		ActionItems: clean.ActionItems,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "edit report failed", err)
		return
	}
	updated, err := h.Reports.Get(ctx, rep.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "reload report failed", err)
		return
	}
	h.Log.Info("report edited", zap.String("user_id", u.ID), zap.String("report_id", rep.ID))
	shared.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /reports/{id}. The streak record and the
// toggled days are left as they are.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, rep, ok := h.owned(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "delete report")
	defer cancel()

	if err := h.Reports.Delete(ctx, rep.ID); err != nil {
		h.ErrLog.Respond(w, r, "delete report failed", err)
		return
	}
	h.Log.Info("report deleted", zap.String("user_id", u.ID), zap.String("report_id", rep.ID))
	w.WriteHeader(http.StatusNoContent)
}

type actionItemRequest struct {
	Completed bool `json:"completed"`
}

type actionItemResponse struct {
	ActionItems []models.ActionItem `json:"action_items"`
}

// HandleActionItem handles POST /reports/{id}/action-items/{index}.
func (h *Handler) HandleActionItem(w http.ResponseWriter, r *http.Request) {
	_, rep, ok := h.owned(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, "action item index must be a number")
		return
	}
	var req actionItemRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "action item: bad body", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "set action item")
	defer cancel()

	items, err := h.Reports.SetActionItem(ctx, rep.ID, index, req.Completed)
	if err != nil {
		h.ErrLog.Respond(w, r, "set action item failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, actionItemResponse{ActionItems: items})
}
