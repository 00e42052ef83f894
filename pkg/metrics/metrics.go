// Package metrics defines the Prometheus collectors for a tracker run and
// pushes them to a Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus collectors for a run.
type Metrics struct {
	registry *prometheus.Registry

	OccurrencesTotal prometheus.Counter
	WordsCreated     prometheus.Counter
	FilesIndexed     *prometheus.CounterVec
	DistinctWords    prometheus.Gauge
	TreeHeight       prometheus.Gauge
	SnapshotBytes    prometheus.Gauge
	SnapshotOps      *prometheus.CounterVec
	SnapshotDuration *prometheus.HistogramVec
}

// New creates all collectors and registers them on a private registry, so
// several instances can coexist in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OccurrencesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordtracker_occurrences_total",
				Help: "Total word occurrences recorded.",
			},
		),
		WordsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordtracker_words_created_total",
				Help: "Words seen for the first time and inserted into the index.",
			},
		),
		FilesIndexed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordtracker_files_indexed_total",
				Help: "Input files processed by status (ok, error).",
			},
			[]string{"status"},
		),
		DistinctWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordtracker_distinct_words",
				Help: "Number of nodes in the word index.",
			},
		),
		TreeHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordtracker_tree_height",
				Help: "Height of the word index tree.",
			},
		),
		SnapshotBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordtracker_snapshot_bytes",
				Help: "Size of the last snapshot loaded or saved.",
			},
		),
		SnapshotOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordtracker_snapshot_operations_total",
				Help: "Snapshot operations by op (load, save) and status (ok, missing, corrupt, error).",
			},
			[]string{"op", "status"},
		),
		SnapshotDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordtracker_snapshot_duration_seconds",
				Help:    "Snapshot load and save latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
	}

	m.registry.MustRegister(
		m.OccurrencesTotal,
		m.WordsCreated,
		m.FilesIndexed,
		m.DistinctWords,
		m.TreeHeight,
		m.SnapshotBytes,
		m.SnapshotOps,
		m.SnapshotDuration,
	)

	return m
}

// Push sends every collector to the Pushgateway at url under job, replacing
// the previous push for the same grouping.
func (m *Metrics) Push(ctx context.Context, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(m.registry)
	if runID != "" {
		pusher = pusher.Grouping("instance", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
