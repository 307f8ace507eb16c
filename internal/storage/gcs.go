// Package storage implements the Google Cloud Storage object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	apperrors "github.com/gruporuiz/tripetl/internal/errors"
	pkgstorage "github.com/gruporuiz/tripetl/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ pkgstorage.ObjectStore = (*GCSStore)(nil)

// MetricsCollector is the subset of metrics the store reports.
type MetricsCollector interface {
	IncStorageErrors(operation string)
	IncObjectsArchived(bucket, status string)
	ObserveArchiveSize(size float64)
}

// GCSConfig contains Google Cloud Storage configuration.
type GCSConfig struct {
	CredentialsFile      string
	CredentialsJSON      string
	Endpoint             string
	UseDefaultCredential bool
}

// GCSStore implements storage.ObjectStore on Google Cloud Storage.
// It supports multiple authentication methods (service account file, JSON,
// default credentials) and is safe for sequential reuse across invocations.
type GCSStore struct {
	client  *storage.Client
	logger  *slog.Logger
	metrics MetricsCollector
	mu      sync.Mutex
	closed  bool
}

// NewGCSStore creates a new Google Cloud Storage object store.
func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *slog.Logger, metrics MetricsCollector) (*GCSStore, error) {
	// Determine authentication method
	var clientOpts []option.ClientOption
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}

	if cfg.UseDefaultCredential {
		// Use default credentials (ADC)
		// This will use GOOGLE_APPLICATION_CREDENTIALS env var or default service account
		logger.Info("using default GCP credentials")
	} else if cfg.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		logger.Info("using GCP credentials from JSON string")
	} else if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
		logger.Info("using GCP credentials from file", "file", cfg.CredentialsFile)
	} else {
		logger.Info("no explicit credentials provided, using default GCP credentials")
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Download fetches the raw bytes of an object.
func (s *GCSStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	startTime := time.Now()

	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncStorageErrors("download")
		}
		return nil, &apperrors.StorageError{Operation: "download", Bucket: bucket, Object: object, Err: err}
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncStorageErrors("download")
		}
		return nil, &apperrors.StorageError{Operation: "download", Bucket: bucket, Object: object, Err: err}
	}

	s.logger.Info("downloaded object",
		"bucket", bucket,
		"object", object,
		"bytes", len(data),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return data, nil
}

// Upload writes data to an object with the given content type.
func (s *GCSStore) Upload(ctx context.Context, bucket, object, contentType string, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, apperrors.ErrStoreClosed
	}

	startTime := time.Now()

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	bytesWritten, err := w.Write(data)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncStorageErrors("upload")
			s.metrics.IncObjectsArchived(bucket, "error")
		}
		w.Close()
		return 0, &apperrors.StorageError{Operation: "upload", Bucket: bucket, Object: object, Err: err}
	}

	// Close finalizes the upload; nothing is visible in the bucket before it.
	if err := w.Close(); err != nil {
		if s.metrics != nil {
			s.metrics.IncStorageErrors("upload")
			s.metrics.IncObjectsArchived(bucket, "error")
		}
		return 0, &apperrors.StorageError{Operation: "upload", Bucket: bucket, Object: object, Err: err}
	}

	s.logger.Info("uploaded object",
		"bucket", bucket,
		"object", object,
		"content_type", contentType,
		"bytes", bytesWritten,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	if s.metrics != nil {
		s.metrics.IncObjectsArchived(bucket, "success")
		s.metrics.ObserveArchiveSize(float64(bytesWritten))
	}

	return int64(bytesWritten), nil
}

// Close closes the store.
func (s *GCSStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("closing GCS store")
	return s.client.Close()
}
