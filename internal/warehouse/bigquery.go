// Package warehouse implements the BigQuery analytical-table loader.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	apperrors "github.com/gruporuiz/tripetl/internal/errors"
	pkgstorage "github.com/gruporuiz/tripetl/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ pkgstorage.TableLoader = (*BigQueryLoader)(nil)

// MetricsCollector is the subset of metrics the loader reports.
type MetricsCollector interface {
	AddRowsLoaded(count int64)
	ObserveLoadDuration(seconds float64)
	IncLoadErrors()
}

// BigQueryConfig identifies the destination table.
type BigQueryConfig struct {
	ProjectID       string
	DatasetID       string
	TableID         string
	CredentialsFile string
	CredentialsJSON string
}

// BigQueryLoader appends archived CSV objects into a predefined table.
// The table schema is read from the live table definition on every load,
// never re-derived from the file.
type BigQueryLoader struct {
	client  *bigquery.Client
	dataset string
	table   string
	logger  *slog.Logger
	metrics MetricsCollector
	mu      sync.Mutex
	closed  bool
}

// NewBigQueryLoader creates a new BigQuery loader.
func NewBigQueryLoader(ctx context.Context, cfg BigQueryConfig, logger *slog.Logger, metrics MetricsCollector) (*BigQueryLoader, error) {
	var clientOpts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	logger.Info("BigQuery loader created",
		"project_id", cfg.ProjectID,
		"dataset_id", cfg.DatasetID,
		"table_id", cfg.TableID,
	)

	return &BigQueryLoader{
		client:  client,
		dataset: cfg.DatasetID,
		table:   cfg.TableID,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Load bulk-appends the CSV object at sourceURI and waits for the job.
func (l *BigQueryLoader) Load(ctx context.Context, sourceURI string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, apperrors.ErrLoaderClosed
	}

	startTime := time.Now()
	tableRef := fmt.Sprintf("%s.%s.%s", l.client.Project(), l.dataset, l.table)

	table := l.client.Dataset(l.dataset).Table(l.table)
	meta, err := table.Metadata(ctx)
	if err != nil {
		return l.fail(sourceURI, tableRef, fmt.Errorf("reading table schema: %w", err))
	}

	gcsRef := bigquery.NewGCSReference(sourceURI)
	gcsRef.SourceFormat = bigquery.CSV
	gcsRef.SkipLeadingRows = 1
	gcsRef.AutoDetect = false
	gcsRef.Schema = meta.Schema

	loader := table.LoaderFrom(gcsRef)
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return l.fail(sourceURI, tableRef, fmt.Errorf("starting load job: %w", err))
	}

	l.logger.Info("started BigQuery load job", "job_id", job.ID(), "source", sourceURI)

	status, err := job.Wait(ctx)
	if err != nil {
		return l.fail(sourceURI, tableRef, fmt.Errorf("waiting for load job: %w", err))
	}
	if err := status.Err(); err != nil {
		return l.fail(sourceURI, tableRef, fmt.Errorf("load job failed: %w", err))
	}

	var rowsLoaded int64
	if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		rowsLoaded = stats.OutputRows
	}

	duration := time.Since(startTime)
	l.logger.Info("BigQuery load job finished",
		"job_id", job.ID(),
		"table", tableRef,
		"rows_loaded", rowsLoaded,
		"duration_ms", duration.Milliseconds(),
	)

	if l.metrics != nil {
		l.metrics.AddRowsLoaded(rowsLoaded)
		l.metrics.ObserveLoadDuration(duration.Seconds())
	}

	return rowsLoaded, nil
}

func (l *BigQueryLoader) fail(sourceURI, tableRef string, err error) (int64, error) {
	if l.metrics != nil {
		l.metrics.IncLoadErrors()
	}
	return 0, &apperrors.LoadError{SourceURI: sourceURI, Table: tableRef, Err: err}
}

// Close closes the loader.
func (l *BigQueryLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.logger.Info("closing BigQuery loader")
	return l.client.Close()
}
