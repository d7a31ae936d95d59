package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks enrichment runs by result
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enricher_runs_total",
			Help: "Total number of enrichment runs",
		},
		[]string{"result"},
	)

	// RecordsSelected tracks records returned by the selection query
	RecordsSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enricher_records_selected_total",
			Help: "Total number of records selected for enrichment",
		},
	)

	// ProfilesMatched tracks records matched to a fetched profile
	ProfilesMatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enricher_profiles_matched_total",
			Help: "Total number of records matched to a fetched profile",
		},
	)

	// ProfilesMissing tracks records the provider returned nothing for
	ProfilesMissing = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "enricher_profiles_missing_total",
			Help: "Total number of records with no profile returned",
		},
	)

	// FetchLatency tracks provider batch-fetch latency
	FetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enricher_fetch_latency_seconds",
			Help:    "Provider fetch latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// LastRunTimestamp tracks when the last run finished
	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enricher_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed run",
		},
	)
)
