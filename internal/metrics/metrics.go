// Package metrics provides Prometheus collectors for harness activity:
// runs, deliveries, bridge invocations and continuation handoffs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for counters.
const (
	StatusOK           = "ok"
	StatusError        = "error"
	StatusMalformed    = "malformed"
	StatusHandlerError = "handler_error"
	StatusResolved     = "resolved"
	StatusRejected     = "rejected"
)

// Metrics holds all harness Prometheus metrics.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	DeliveriesTotal  *prometheus.CounterVec
	InvocationsTotal *prometheus.CounterVec
	HandoffsTotal    prometheus.Counter
}

// New creates a metrics collector registered with the given registerer.
// Tests pass a private prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scriptflow_runs_total",
				Help: "Total number of script runs by outcome",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scriptflow_run_duration_seconds",
				Help:    "Script run duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),
		DeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scriptflow_deliveries_total",
				Help: "Total number of external event deliveries by outcome",
			},
			[]string{"status"},
		),
		InvocationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scriptflow_bridge_invocations_total",
				Help: "Total number of async bridge invocations by outcome",
			},
			[]string{"status"},
		),
		HandoffsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scriptflow_handoffs_total",
				Help: "Total number of continuation handoffs issued",
			},
		),
	}
}

// NewNop creates a collector backed by a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
