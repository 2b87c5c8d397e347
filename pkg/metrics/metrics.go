package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all export pipeline metrics
type Metrics struct {
	// Row output metrics
	RowsWritten     *prometheus.CounterVec
	EntitiesSkipped *prometheus.CounterVec

	// Batch metrics
	PatientQueueSize   prometheus.Gauge
	BatchesFlushed     prometheus.Counter
	BatchFlushDuration prometheus.Histogram

	// Patient export metrics
	PatientsExported prometheus.Counter
}

// NewMetrics creates and registers all export pipeline metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		RowsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_written_total",
			Help:      "Total number of rows written per output table",
		}, []string{"table"}),
		EntitiesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entities_skipped_total",
			Help:      "Total number of entities dropped for missing mandatory codes",
		}, []string{"table"}),
		PatientQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patient_queue_size",
			Help:      "Current number of patients buffered for the next batch",
		}),
		BatchesFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_flushed_total",
			Help:      "Total number of patient batches flushed to columnar output",
		}),
		BatchFlushDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_flush_duration_seconds",
			Help:      "Time spent encoding and committing one batch",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		PatientsExported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "patients_exported_total",
			Help:      "Total number of patients pushed through the export pipeline",
		}),
	}
}
