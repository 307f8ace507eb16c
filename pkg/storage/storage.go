// Package storage defines interfaces for object storage operations.
//
// This package provides the abstractions the ETL job depends on for reading
// raw exports and archiving transformed data, keeping the job testable
// without a live bucket.
package storage

import "context"

// ObjectStore reads and writes objects in cloud storage buckets.
type ObjectStore interface {
	// Download fetches the raw bytes of an object.
	Download(ctx context.Context, bucket, object string) ([]byte, error)

	// Upload writes data to an object with the given content type.
	// Returns the number of bytes written.
	Upload(ctx context.Context, bucket, object, contentType string, data []byte) (int64, error)

	// Close closes the store and releases resources.
	Close() error
}

// TableLoader appends an archived object into the analytical table.
type TableLoader interface {
	// Load bulk-appends the CSV object at the given gs:// URI and waits for
	// the load job to complete. Returns the number of rows loaded.
	Load(ctx context.Context, sourceURI string) (int64, error)

	// Close closes the loader and releases resources.
	Close() error
}
