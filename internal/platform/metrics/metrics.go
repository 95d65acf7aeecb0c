// Package metrics exposes Bodypress's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturesTotal counts stored captures by source.
	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bodypress",
			Name:      "captures_total",
			Help:      "Captures stored, by source.",
		},
		[]string{"source"},
	)

	// GenerationsTotal counts entry generations by outcome
	// (ok, no-data, backend-error, bad-response).
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bodypress",
			Name:      "generations_total",
			Help:      "Entry generations, by outcome.",
		},
		[]string{"outcome"},
	)

	// BackendAsksTotal counts router dispatches by mode and result.
	BackendAsksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bodypress",
			Name:      "backend_asks_total",
			Help:      "Backend ask calls, by mode and result.",
		},
		[]string{"mode", "result"},
	)

	// GenerationSeconds observes end-to-end generation latency.
	GenerationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bodypress",
			Name:      "generation_seconds",
			Help:      "End-to-end entry generation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)
