package api

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/babyscan/babyscan/internal/measure"
	"github.com/babyscan/babyscan/internal/types"
)

// Metrics are the Prometheus collectors exported on /metrics.
type Metrics struct {
	scans    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the scan collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babyscan",
			Name:      "scans_total",
			Help:      "Completed scans by stunting category.",
		}, []string{"category"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "babyscan",
			Name:      "scan_failures_total",
			Help:      "Failed scans by failure kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "babyscan",
			Name:      "scan_duration_seconds",
			Help:      "Wall time of scan requests, including detection.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}),
	}
	reg.MustRegister(m.scans, m.failures, m.duration)
	return m
}

// newRegistry returns a registry with the standard Go and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) observeScan(seconds float64, category string, err error) {
	m.duration.Observe(seconds)
	if err != nil {
		m.failures.WithLabelValues(failureKind(err)).Inc()
		return
	}
	m.scans.WithLabelValues(category).Inc()
}

// failureKind buckets scan errors into a small label set.
func failureKind(err error) string {
	switch {
	case errors.Is(err, measure.ErrInvalidScale):
		return "invalid_scale"
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, measure.ErrDetectionFailed):
		return "detection_failed"
	case errors.Is(err, measure.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case isBadRequest(err):
		return "bad_request"
	default:
		return "internal"
	}
}
