// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireIdentity)
		pr.Get("/", h.ServeDashboard)
		pr.Post("/calendar", h.HandleCalendar)
		pr.Put("/goal", h.HandleGoal)
	})

	return r
}
