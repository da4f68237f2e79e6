// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the settings endpoints. Every route needs an identity.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireIdentity)
	r.Get("/", h.ServeSettings)
	r.Put("/name", h.HandleName)
	return r
}
