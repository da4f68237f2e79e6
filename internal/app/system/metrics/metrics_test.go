package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/runtracker/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	m := metrics.New()
	m.SyncOps.WithLabelValues("load_dashboard", metrics.ResultOK).Inc()
	m.SyncOps.WithLabelValues("load_dashboard", metrics.ResultOK).Inc()
	m.DashboardDegraded.Inc()

	if got := testutil.ToFloat64(m.SyncOps.WithLabelValues("load_dashboard", metrics.ResultOK)); got != 2 {
		t.Errorf("sync ops: got %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"runtracker_sync_operations_total", "runtracker_dashboard_degraded_total 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNewIsIndependent(t *testing.T) {
	// two instances must not collide on registration
	a, b := metrics.New(), metrics.New()
	a.DashboardDegraded.Inc()
	if got := testutil.ToFloat64(b.DashboardDegraded); got != 0 {
		t.Errorf("second registry: got %v, want 0", got)
	}
}
