package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/runtracker/internal/app/features/errors"
	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("toggle: %w", streaksync.ErrInvalidInput), http.StatusBadRequest},
		{docstore.ErrNotFound, http.StatusNotFound},
		{docstore.ErrExists, http.StatusConflict},
		{fmt.Errorf("%w: reset", docstore.ErrTransient), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := uierrors.StatusOf(tt.err); got != tt.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespond_ServerErrorIsLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	errLog := uierrors.NewErrorLogger(zap.New(core))

	rec := testutil.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	errLog.Respond(rec, req, "list reports failed", fmt.Errorf("secret connection string"))

	rec.AssertStatus(t, http.StatusInternalServerError)
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var p problem.Problem
	rec.DecodeJSON(t, &p)
	if p.Detail == "" || p.Instance != "/reports" {
		t.Errorf("problem: got %+v", p)
	}
	if got := rec.Body.String(); strings.Contains(got, "secret") {
		t.Errorf("internal error leaked: %s", got)
	}
	if logs.FilterMessage("list reports failed").Len() != 1 {
		t.Errorf("expected one error log, got %d", logs.Len())
	}
}

func TestRespond_InvalidInputShowsDetail(t *testing.T) {
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	rec := testutil.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/calendar", nil)

	errLog.Respond(rec, req, "toggle failed", fmt.Errorf("%w: day 40 out of range", streaksync.ErrInvalidInput))

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "day 40 out of range")
}
