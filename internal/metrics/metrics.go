// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellbeing_records_created_total",
		Help: "Prediction records written to the history",
	})

	RecordsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellbeing_records_deleted_total",
		Help: "Prediction records removed, by id or by clear-all",
	})

	RecordsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellbeing_records_imported_total",
		Help: "Prediction records written by bulk import",
	})

	// MalformedRecords counts records skipped while decoding or aggregating,
	// labelled by the missing field ("record" for undecodable entries).
	MalformedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_malformed_records_total",
		Help: "Records skipped because a field was missing or unusable",
	}, []string{"field"})

	// CorruptReads counts stored values that could not be parsed.
	CorruptReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_corrupt_reads_total",
		Help: "Stored values that failed to parse and were treated as absent",
	}, []string{"key"})

	StatsRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_stats_refresh_total",
		Help: "Statistics cache refreshes by outcome",
	}, []string{"outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellbeing_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"route", "method", "status"})
)
