// Package metrics exposes Prometheus instrumentation for ingestion and reads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factoryboard_uploads_total",
			Help: "Dataset replacement attempts by source and outcome",
		},
		[]string{"source", "status"},
	)

	RowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factoryboard_rows_ingested_total",
			Help: "Rows accepted into a dataset, by record kind",
		},
		[]string{"kind"},
	)

	RowWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factoryboard_row_warnings_total",
			Help: "Rows rejected during ingestion, by reason",
		},
		[]string{"reason"},
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factoryboard_ingest_duration_seconds",
			Help:    "Time spent parsing and installing a dataset",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"source"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factoryboard_fetches_total",
			Help: "Dashboard read requests by resource and outcome",
		},
		[]string{"resource", "status"},
	)

	DatasetVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "factoryboard_dataset_version",
			Help: "Version of the dataset currently served",
		},
	)
)

// Recorder is a small facade over the package collectors.
type Recorder struct{}

// NewRecorder returns a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordIngest records the outcome of one dataset replacement attempt.
func (r *Recorder) RecordIngest(source, status string, accepted map[string]int, warnings map[string]int, duration time.Duration) {
	UploadsTotal.WithLabelValues(source, status).Inc()
	IngestDuration.WithLabelValues(source).Observe(duration.Seconds())
	for kind, n := range accepted {
		RowsIngested.WithLabelValues(kind).Add(float64(n))
	}
	for reason, n := range warnings {
		RowWarnings.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordFetch records one read of a dashboard resource.
func (r *Recorder) RecordFetch(resource, status string) {
	FetchesTotal.WithLabelValues(resource, status).Inc()
}

// SetVersion publishes the served dataset version.
func (r *Recorder) SetVersion(version uint64) {
	DatasetVersion.Set(float64(version))
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
