// Package metrics exposes the Prometheus instruments incremented by the
// batch orchestrator and served by the API and watch mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts analyzed files by outcome ("ok" or "failed").
	FilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forensicflow",
		Name:      "files_processed_total",
		Help:      "Number of input files processed, by outcome.",
	}, []string{"outcome"})

	// RowsRead counts raw data rows consumed across all passes.
	RowsRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forensicflow",
		Name:      "rows_read_total",
		Help:      "Number of CSV data rows read, all passes included.",
	})

	// EventsAccumulated counts rows that survived filtering and reached an
	// accumulator during the holistic pass.
	EventsAccumulated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forensicflow",
		Name:      "events_accumulated_total",
		Help:      "Number of filtered events folded into statistics.",
	})

	// FileDuration observes wall-clock seconds spent per analyzed file.
	FileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forensicflow",
		Name:      "file_processing_duration_seconds",
		Help:      "Wall-clock time to fully analyze one file.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
