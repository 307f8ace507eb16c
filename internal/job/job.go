// Package job orchestrates one ETL invocation: extract, transform, archive, load.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/gruporuiz/tripetl/internal/errors"
	"github.com/gruporuiz/tripetl/internal/etl"
	"github.com/gruporuiz/tripetl/pkg/event"
	pkgstorage "github.com/gruporuiz/tripetl/pkg/storage"
)

// MetricsCollector is the subset of metrics the job reports.
type MetricsCollector interface {
	AddRowsTransformed(status string, count int)
}

// Config carries the bucket pair the job operates on.
type Config struct {
	RawBucket       string
	ProcessedBucket string
}

// Result summarizes a completed invocation.
type Result struct {
	ArchiveObject   string
	ArchiveURI      string
	RowsTransformed int
	RowsLoaded      int64
}

// ETLJob runs the extract-transform-archive-load sequence for one storage
// event. It holds no per-invocation state; every Run processes one
// independent file with its own in-memory record set.
type ETLJob struct {
	cfg      Config
	store    pkgstorage.ObjectStore
	loader   pkgstorage.TableLoader
	pipeline *etl.Pipeline
	logger   *slog.Logger
	metrics  MetricsCollector

	// now is swappable in tests; archive names embed a timestamp.
	now func() time.Time
}

// NewETLJob creates a job bound to its collaborators.
func NewETLJob(
	cfg Config,
	store pkgstorage.ObjectStore,
	loader pkgstorage.TableLoader,
	pipeline *etl.Pipeline,
	logger *slog.Logger,
	metrics MetricsCollector,
) *ETLJob {
	return &ETLJob{
		cfg:      cfg,
		store:    store,
		loader:   loader,
		pipeline: pipeline,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run processes one storage event end to end. There are no retries and no
// compensation: a load failure after a successful archive write leaves the
// archive object in place.
func (j *ETLJob) Run(ctx context.Context, evt *event.StorageEvent) (*Result, error) {
	j.logger.Info("processing file", "uri", evt.ObjectURI())

	// Extract
	data, err := j.store.Download(ctx, evt.Bucket, evt.Name)
	if err != nil {
		return nil, &apperrors.ExtractError{Bucket: evt.Bucket, Object: evt.Name, Err: err}
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, &apperrors.ExtractError{Bucket: evt.Bucket, Object: evt.Name, Err: err}
	}
	j.logger.Info("extraction complete", "object", evt.Name, "rows", len(records))

	// Transform
	records, err = j.pipeline.Transform(records)
	if err != nil {
		if j.metrics != nil {
			j.metrics.AddRowsTransformed("error", len(records))
		}
		return nil, err
	}
	if j.metrics != nil {
		j.metrics.AddRowsTransformed("success", len(records))
	}
	j.logger.Info("transformation complete", "object", evt.Name, "rows", len(records))

	csvData, err := etl.RenderCSV(records)
	if err != nil {
		return nil, fmt.Errorf("rendering archive csv: %w", err)
	}

	// Archive
	archiveObject := fmt.Sprintf("transportation_data_transformed_%s.csv", j.now().Format("20060102150405"))
	if _, err := j.store.Upload(ctx, j.cfg.ProcessedBucket, archiveObject, "text/csv", csvData); err != nil {
		return nil, err
	}

	// Load
	archiveURI := fmt.Sprintf("gs://%s/%s", j.cfg.ProcessedBucket, archiveObject)
	rowsLoaded, err := j.loader.Load(ctx, archiveURI)
	if err != nil {
		// The archive object stays behind with nothing loaded from it.
		j.logger.Error("analytical load failed, archive object orphaned",
			"archive_uri", archiveURI, "error", err)
		return nil, err
	}

	j.logger.Info("invocation complete",
		"object", evt.Name,
		"archive_uri", archiveURI,
		"rows_transformed", len(records),
		"rows_loaded", rowsLoaded,
	)

	return &Result{
		ArchiveObject:   archiveObject,
		ArchiveURI:      archiveURI,
		RowsTransformed: len(records),
		RowsLoaded:      rowsLoaded,
	}, nil
}

// decodeRecords parses the raw object bytes as a JSON array of row objects.
// An empty array is an extraction failure: the analytical table never takes
// an all-header append.
func decodeRecords(data []byte) ([]etl.Record, error) {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("source object is not a JSON array of rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyRecordSet
	}
	records := make([]etl.Record, len(rows))
	for i, row := range rows {
		records[i] = etl.Record(row)
	}
	return records, nil
}
