package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Trigger metrics
	EventsReceived  *prometheus.CounterVec
	InvalidPayloads *prometheus.CounterVec

	// Pipeline metrics
	RowsTransformed   *prometheus.CounterVec
	TransformDuration *prometheus.HistogramVec
	DerivationNulls   *prometheus.CounterVec

	// Storage metrics
	ObjectsArchived *prometheus.CounterVec
	ArchiveSize     prometheus.Histogram
	StorageErrors   *prometheus.CounterVec

	// Analytical load metrics
	RowsLoaded   prometheus.Counter
	LoadDuration prometheus.Histogram
	LoadErrors   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Trigger metrics
		EventsReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trigger_events_received_total",
				Help: "Total number of trigger notifications received",
			},
			[]string{"outcome"},
		),
		InvalidPayloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trigger_invalid_payloads_total",
				Help: "Total number of rejected trigger payloads",
			},
			[]string{"reason"},
		),

		// Pipeline metrics
		RowsTransformed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_rows_transformed_total",
				Help: "Total number of trip records pushed through the pipeline",
			},
			[]string{"status"},
		),
		TransformDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "etl_transform_duration_seconds",
				Help:    "Duration of transform pipeline runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		DerivationNulls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "etl_derivation_nulls_total",
				Help: "Total number of rows where a derived column degraded to null",
			},
			[]string{"column"},
		),

		// Storage metrics
		ObjectsArchived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_objects_archived_total",
				Help: "Total number of transformed CSV objects archived",
			},
			[]string{"bucket", "status"},
		),
		ArchiveSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "storage_archive_size_bytes",
				Help:    "Size of archived CSV objects",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
			},
		),
		StorageErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_errors_total",
				Help: "Total number of object storage errors",
			},
			[]string{"operation"},
		),

		// Analytical load metrics
		RowsLoaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bigquery_rows_loaded_total",
				Help: "Total number of rows appended to the analytical table",
			},
		),
		LoadDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bigquery_load_duration_seconds",
				Help:    "Duration of BigQuery load jobs including the wait for completion",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		LoadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bigquery_load_errors_total",
				Help: "Total number of failed BigQuery load jobs",
			},
		),
	}
}

// IncEventsReceived increments the trigger events counter for an outcome.
func (m *Metrics) IncEventsReceived(outcome string) {
	m.EventsReceived.WithLabelValues(outcome).Inc()
}

// IncInvalidPayloads increments the rejected payloads counter.
func (m *Metrics) IncInvalidPayloads(reason string) {
	m.InvalidPayloads.WithLabelValues(reason).Inc()
}

// AddRowsTransformed adds to the transformed rows counter.
func (m *Metrics) AddRowsTransformed(status string, count int) {
	m.RowsTransformed.WithLabelValues(status).Add(float64(count))
}

// ObserveTransformDuration observes the duration of a pipeline stage.
func (m *Metrics) ObserveTransformDuration(stage string, seconds float64) {
	m.TransformDuration.WithLabelValues(stage).Observe(seconds)
}

// IncDerivationNulls increments the null-derivation counter for a column.
func (m *Metrics) IncDerivationNulls(column string) {
	m.DerivationNulls.WithLabelValues(column).Inc()
}

// IncObjectsArchived increments the archived objects counter.
func (m *Metrics) IncObjectsArchived(bucket, status string) {
	m.ObjectsArchived.WithLabelValues(bucket, status).Inc()
}

// ObserveArchiveSize observes the size of an archived object.
func (m *Metrics) ObserveArchiveSize(size float64) {
	m.ArchiveSize.Observe(size)
}

// IncStorageErrors increments the storage errors counter.
func (m *Metrics) IncStorageErrors(operation string) {
	m.StorageErrors.WithLabelValues(operation).Inc()
}

// AddRowsLoaded adds to the loaded rows counter.
func (m *Metrics) AddRowsLoaded(count int64) {
	m.RowsLoaded.Add(float64(count))
}

// ObserveLoadDuration observes the duration of a load job.
func (m *Metrics) ObserveLoadDuration(seconds float64) {
	m.LoadDuration.Observe(seconds)
}

// IncLoadErrors increments the load errors counter.
func (m *Metrics) IncLoadErrors() {
	m.LoadErrors.Inc()
}
