// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrMissingEventInfo = errors.New("missing file/bucket info")
	ErrEmptyRecordSet   = errors.New("record set is empty")
	ErrStoreClosed      = errors.New("object store is closed")
	ErrLoaderClosed     = errors.New("table loader is closed")
)

// ExtractError represents a failure to fetch or decode the source object.
type ExtractError struct {
	Bucket string
	Object string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error: bucket=%s object=%s: %v", e.Bucket, e.Object, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// TransformError represents a batch-fatal failure inside the transform
// pipeline, such as a missing required column or an unparseable field.
type TransformError struct {
	Stage  string
	Column string
	Row    int
	Err    error
}

func (e *TransformError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("transform error: stage=%s column=%s row=%d: %v", e.Stage, e.Column, e.Row, e.Err)
	}
	return fmt.Sprintf("transform error: stage=%s column=%s: %v", e.Stage, e.Column, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// StorageError represents a storage operation failure.
type StorageError struct {
	Operation string
	Bucket    string
	Object    string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: operation=%s bucket=%s object=%s: %v",
		e.Operation, e.Bucket, e.Object, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// LoadError represents an analytical-table load failure. When it occurs the
// archive object from the preceding step is left in place.
type LoadError struct {
	SourceURI string
	Table     string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error: source=%s table=%s: %v", e.SourceURI, e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Retryable defines an interface for errors that can indicate if they are retryable.
type Retryable interface {
	error
	IsRetryable() bool
}

// IsRetryable checks if an error is retryable by the invoking platform.
// This component never retries; the classification is surfaced so callers
// can decide whether a re-delivery of the trigger is worth attempting.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable Retryable
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}

// IsRetryable determines if a StorageError is retryable based on the operation type.
func (e *StorageError) IsRetryable() bool {
	// Transient bucket I/O is worth re-delivering; a decode failure is not.
	return e.Operation == "download" || e.Operation == "upload"
}

// IsRetryable determines if a LoadError is retryable.
// Re-running the load re-appends the archive, so the platform must dedupe first.
func (e *LoadError) IsRetryable() bool {
	return false
}

// IsRetryable determines if a TransformError is retryable.
// Bad data stays bad on redelivery.
func (e *TransformError) IsRetryable() bool {
	return false
}
