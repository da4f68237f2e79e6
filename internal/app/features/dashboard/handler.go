// internal/app/features/dashboard/handler.go
package dashboard

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	uierrors "github.com/dalemusser/runtracker/internal/app/features/errors"
	"github.com/dalemusser/runtracker/internal/app/features/shared"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/htmlsanitize"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"go.uber.org/zap"
)

// MaxGoalLength caps the goal text, in characters.
const MaxGoalLength = 500

type Handler struct {
	Sync   *streaksync.Synchronizer
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(sync *streaksync.Synchronizer, users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sync:   sync,
		Users:  users,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeDashboard handles GET /dashboard?year=&month=. Without both
// parameters the current month is shown.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	viewed, err := h.monthParam(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "dashboard: bad month", err)
		return
	}

	st, err := h.Sync.LoadDashboardState(r.Context(), u, viewed)
	if err != nil {
		h.ErrLog.Respond(w, r, "dashboard load failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) monthParam(r *http.Request) (calendar.Month, error) {
	q := r.URL.Query()
	ys, ms := q.Get("year"), q.Get("month")
	if ys == "" && ms == "" {
		return calendar.Of(h.Sync.Now()), nil
	}
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil {
		return calendar.Month{}, fmt.Errorf("%w: year and month must both be numbers", streaksync.ErrInvalidInput)
	}
	return calendar.NewMonth(y, m), nil
}

type toggleRequest struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
	Action string `json:"action"`
}

// HandleCalendar handles POST /dashboard/calendar.
func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	var req toggleRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "calendar toggle: bad body", err)
		return
	}
	action, err := streaksync.ParseAction(req.Action)
	if err != nil {
		h.ErrLog.Respond(w, r, "calendar toggle: bad action", err)
		return
	}

	res, err := h.Sync.RecordCalendarToggle(r.Context(), u, calendar.NewMonth(req.Year, req.Month), req.Day, action)
	if err != nil {
		h.ErrLog.Respond(w, r, "calendar toggle failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, res)
}

type goalRequest struct {
	Goal string `json:"goal"`
}

// HandleGoal handles PUT /dashboard/goal.
func (h *Handler) HandleGoal(w http.ResponseWriter, r *http.Request) {
	u, ok := shared.User(r)
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, "no user identity on request")
		return
	}
	var req goalRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "goal: bad body", err)
		return
	}
	goal := htmlsanitize.Text(req.Goal)
	if utf8.RuneCountInString(goal) > MaxGoalLength {
		problem.Write(w, r, http.StatusBadRequest, fmt.Sprintf("goal must be at most %d characters", MaxGoalLength))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "update goal")
	defer cancel()

	seed := userstore.NewProfile(u.ID, u.Name, u.Email, u.PhotoURL, h.Sync.Now().UTC())
	if _, _, err := h.Users.Ensure(ctx, seed); err != nil {
		h.ErrLog.Respond(w, r, "goal: load profile failed", err)
		return
	}
	if err := h.Users.UpdateGoal(ctx, u.ID, goal); err != nil {
		h.ErrLog.Respond(w, r, "goal: update failed", err)
		return
	}
	h.Log.Info("goal updated", zap.String("user_id", u.ID))
	shared.WriteJSON(w, http.StatusOK, goalRequest{Goal: goal})
}
