// internal/app/features/reports/handler.go
package reports

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/runtracker/internal/app/features/errors"
	"github.com/dalemusser/runtracker/internal/app/features/shared"
	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler owns the book report endpoints. New reports go through the
// synchronizer so the streak record follows; edits and deletes go
// straight to the report store.
type Handler struct {
	Sync    *streaksync.Synchronizer
	Reports *reportstore.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs a reports Handler.
func NewHandler(sync *streaksync.Synchronizer, reports *reportstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sync:    sync,
		Reports: reports,
		Log:     logger,
		ErrLog:  errLog,
	}
}

var errForbidden = errors.New("report belongs to another user")

// owned loads the report named by the {id} URL parameter and checks it
// belongs to the caller. On failure the response is already written.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (streaksync.User, models.Report, bool) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return u, models.Report{}, false
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "get report")
	defer cancel()
	rep, err := h.Reports.Get(ctx, id)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "report not found")
		return u, models.Report{}, false
	case err != nil:
		h.ErrLog.Respond(w, r, "get report failed", err)
		return u, models.Report{}, false
	case rep.UserID != u.ID:
		h.Log.Warn("report access denied",
			zap.String("user_id", u.ID),
			zap.String("report_id", id),
			zap.Error(errForbidden))
		problem.Write(w, r, http.StatusForbidden, errForbidden.Error())
		return u, models.Report{}, false
	}
	return u, rep, true
}
