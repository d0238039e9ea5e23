// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_provider_requests_total",
			Help: "Total number of provider fetches by outcome",
		},
		[]string{"provider", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "metasearch_provider_request_duration_seconds",
			Help: "Duration of provider fetches in seconds",
		},
		[]string{"provider"},
	)

	FusionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_fusion_runs_total",
			Help: "Total number of fusion runs by method",
		},
		[]string{"method"},
	)

	FusionDocumentsMerged = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metasearch_fusion_documents_merged",
			Help:    "Number of merged documents per fusion run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metasearch_records_dropped_total",
			Help: "Input records dropped before fusion by reason",
		},
		[]string{"reason"},
	)
)
