// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the report endpoints. Ownership of a single report is
// checked inside the handlers.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireIdentity)
		rr.Get("/", h.ServeList)
		rr.Post("/", h.HandleCreate)
		rr.Get("/stats", h.ServeStats)
		rr.Get("/reports.csv", h.ServeCSV)
		rr.Get("/{id}", h.ServeReport)
		rr.Put("/{id}", h.HandleEdit)
		rr.Delete("/{id}", h.HandleDelete)
		rr.Post("/{id}/action-items/{index}", h.HandleActionItem)
	})

	return r
}
