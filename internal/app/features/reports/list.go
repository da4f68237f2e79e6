// internal/app/features/reports/list.go
package reports

import (
	"net/http"

	"github.com/dalemusser/runtracker/internal/app/features/shared"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	"github.com/dalemusser/runtracker/internal/app/system/paging"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/reading"
)

type listResponse struct {
	Query   string          `json:"query,omitempty"`
	Count   int             `json:"count"`
	Page    paging.Range    `json:"page"`
	Reports []models.Report `json:"reports"`
}

// ServeList handles GET /reports?q=&start=&limit=. Reports are newest
// first; q filters on title, summary and reflection. Count is the number
// of matches, Reports the requested page of them.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "list reports")
	defer cancel()

	all, err := h.Reports.ListByUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "list reports failed", err)
		return
	}
	q := r.URL.Query().Get("q")
	found := reportstore.Search(all, q)
	if found == nil {
		found = []models.Report{}
	}
	page, rng := paging.Page(found, paging.ParseStart(r), paging.ParseLimit(r))
	shared.WriteJSON(w, http.StatusOK, listResponse{Query: q, Count: len(found), Page: rng, Reports: page})
}

// ServeStats handles GET /reports/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "report stats")
	defer cancel()

	all, err := h.Reports.ListByUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "report stats failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reading.Summarize(all))
}
