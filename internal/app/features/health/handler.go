package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Docs    docstore.Store
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the document store and logger.
func NewHandler(docs docstore.Store, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		Docs:    docs,
		Backend: backend,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Backend   string `json:"backend,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"mongo", "latency_ms":2 }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  h.Backend,
	}

	start := time.Now()
	err := h.Docs.Ping(ctx)
	resp.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	}

	_ = json.NewEncoder(w).Encode(resp)
}
