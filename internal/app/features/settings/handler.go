// internal/app/features/settings/handler.go
package settings

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	uierrors "github.com/dalemusser/runtracker/internal/app/features/errors"
	"github.com/dalemusser/runtracker/internal/app/features/shared"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/dalemusser/runtracker/internal/app/system/htmlsanitize"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"go.uber.org/zap"
)

// MaxNameLength caps display names, in characters.
const MaxNameLength = 100

// Handler owns the per-user settings endpoints.
type Handler struct {
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a settings Handler bound to the profile store.
func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Log:    logger,
		ErrLog: errLog,
	}
}

type settingsResponse struct {
	UserID         string `json:"user_id"`
	IdentitySource string `json:"identity_source"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhotoURL       string `json:"photo_url,omitempty"`
	Goal           string `json:"goal"`
}

func responseFor(id auth.Identity, p models.Profile) settingsResponse {
	return settingsResponse{
		UserID:         p.ID,
		IdentitySource: id.Source,
		Name:           p.Name,
		Email:          p.Email,
		PhotoURL:       p.PhotoURL,
		Goal:           p.Goal,
	}
}

// ServeSettings handles GET /settings. The profile is created on first
// visit like the dashboard does.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	u, _ := shared.User(r)
	if !ok || u.ID == "" {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Read(), h.Log, "load settings")
	defer cancel()

	p, _, err := h.Users.Ensure(ctx, userstore.NewProfile(u.ID, u.Name, u.Email, u.PhotoURL, time.Now().UTC()))
	if err != nil {
		h.ErrLog.Respond(w, r, "load settings failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, responseFor(id, p))
}

type nameRequest struct {
	Name string `json:"name"`
}

// HandleName handles PUT /settings/name.
func (h *Handler) HandleName(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentIdentity(r)
	u, _ := shared.User(r)
	if !ok || u.ID == "" {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	var req nameRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "settings: bad body", err)
		return
	}
	name := htmlsanitize.Text(req.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		problem.Write(w, r, http.StatusBadRequest, "name is required")
		return
	case n > MaxNameLength:
		problem.Write(w, r, http.StatusBadRequest, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "update name")
	defer cancel()

	if _, _, err := h.Users.Ensure(ctx, userstore.NewProfile(u.ID, name, u.Email, u.PhotoURL, time.Now().UTC())); err != nil {
		h.ErrLog.Respond(w, r, "settings: load profile failed", err)
		return
	}
	if err := h.Users.UpdateName(ctx, u.ID, name); err != nil {
		h.ErrLog.Respond(w, r, "settings: update name failed", err)
		return
	}
	p, err := h.Users.Get(ctx, u.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, "settings: reload profile failed", err)
		return
	}
	h.Log.Info("display name updated", zap.String("user_id", u.ID))
	shared.WriteJSON(w, http.StatusOK, responseFor(id, p))
}
