package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/features/health"
	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"go.uber.org/zap"
)

type downStore struct{ docstore.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

type slowStore struct{ docstore.Store }

func (slowStore) Ping(context.Context) error {
	time.Sleep(20 * time.Millisecond)
	return nil
}

type healthBody struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Backend   string `json:"backend"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	handler := health.NewHandler(docstore.NewMemory(), "memory", zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var response healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "ok" || response.Database != "connected" || response.Backend != "memory" {
		t.Errorf("unexpected response: %+v", response)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := health.NewHandler(downStore{}, "mongo", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var response healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Status != "error" || response.Database != "disconnected" || response.Error != "connection refused" {
		t.Errorf("unexpected response: %+v", response)
	}
}

func TestServe_ReportsPingLatency(t *testing.T) {
	handler := health.NewHandler(slowStore{}, "sqlite", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	var response healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.LatencyMS < 20 {
		t.Errorf("latency_ms: got %d, want at least 20", response.LatencyMS)
	}
}
