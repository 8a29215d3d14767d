// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "seqforge"

// Fetch outcome label values.
const (
	FetchSuccess = "success"
	FetchRetry   = "retry"
	FetchFailure = "failure"
	FetchSkipped = "skipped"
)

var (
	// Ingestion Metrics
	RatingsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_ingested_total",
			Help:      "Total number of rating lines parsed from raw logs",
		},
	)

	IngestParseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_parse_errors_total",
			Help:      "Total number of sources rejected because of malformed input",
		},
	)

	// Selection and Windowing Metrics
	ItemsRetained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_retained",
			Help:      "Number of items in the top-N set of the last run",
		},
	)

	WindowsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_generated_total",
			Help:      "Total number of (context, label) windows generated",
		},
	)

	UsersSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_skipped_total",
			Help:      "Total number of users skipped for having too few ratings",
		},
	)

	SplitWindows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_windows",
			Help:      "Number of windows assigned to each split in the last run",
		},
		[]string{"split"}, // "train", "test", "check"
	)

	// Output Metrics
	ShardsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shards_written_total",
			Help:      "Total number of shard files written",
		},
		[]string{"format"},
	)

	ShardBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shard_bytes_written_total",
			Help:      "Total number of bytes written to shard files",
		},
		[]string{"format"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"stage"},
	)

	// Metadata Fetch Metrics
	MetadataFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_fetch_total",
			Help:      "Total number of metadata fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordStage records the duration of a pipeline stage.
func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordShard records one written shard file.
func RecordShard(format string, bytes int64) {
	ShardsWritten.WithLabelValues(format).Inc()
	ShardBytesWritten.WithLabelValues(format).Add(float64(bytes))
}

// RecordFetch records a metadata fetch outcome.
func RecordFetch(outcome string) {
	MetadataFetches.WithLabelValues(outcome).Inc()
}

// RecordSplit sets the window count of a split.
func RecordSplit(split string, windows int) {
	SplitWindows.WithLabelValues(split).Set(float64(windows))
}

// RecordCircuitBreakerTransition updates the breaker gauge and transition counter.
// state is 0 for closed, 1 for half-open and 2 for open.
func RecordCircuitBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// WriteTextfile writes every metric of the default gatherer to path in the
// Prometheus text format, for pickup by the node-exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
