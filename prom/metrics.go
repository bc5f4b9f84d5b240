// Package prom holds the service's Prometheus instrumentation.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts document extractions by outcome
	// (llm, heuristic, empty, error).
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimflow_extractions_total",
		Help: "Document extractions processed, by outcome",
	}, []string{"outcome"})

	// ExtractionSeconds observes end-to-end document processing time.
	ExtractionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claimflow_extraction_duration_seconds",
		Help:    "Document extraction duration",
		Buckets: prometheus.DefBuckets,
	})

	// DuplicateChecksTotal counts duplicate probes by verdict
	// (exact, fuzzy, none, stale, error).
	DuplicateChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimflow_duplicate_checks_total",
		Help: "Duplicate-claim checks, by verdict",
	}, []string{"verdict"})

	// ClaimsSubmittedTotal counts accepted claims.
	ClaimsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimflow_claims_submitted_total",
		Help: "Claims accepted into the store",
	})
)
