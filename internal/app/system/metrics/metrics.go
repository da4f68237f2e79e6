// Package metrics holds the Prometheus collectors for the tracker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultOK       = "ok"
	ResultDegraded = "degraded"
	ResultError    = "error"
)

// Metrics is a set of collectors registered on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	SyncOps           *prometheus.CounterVec
	StoreRetries      *prometheus.CounterVec
	DashboardDegraded prometheus.Counter
	StreakWriteSkips  prometheus.Counter
}

// New registers the collectors on a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		SyncOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtracker",
			Name:      "sync_operations_total",
			Help:      "Streak synchronizer operations by result.",
		}, []string{"op", "result"}),
		StoreRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtracker",
			Name:      "store_retries_total",
			Help:      "Document store calls retried after a transient failure.",
		}, []string{"op"}),
		DashboardDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtracker",
			Name:      "dashboard_degraded_total",
			Help:      "Dashboard loads served with at least one failed section.",
		}),
		StreakWriteSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtracker",
			Name:      "streak_write_skips_total",
			Help:      "Dashboard loads whose streak record was unchanged.",
		}),
	}
	reg.MustRegister(
		m.SyncOps,
		m.StoreRetries,
		m.DashboardDegraded,
		m.StreakWriteSkips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
