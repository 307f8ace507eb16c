// Package validator provides storage event validation.
package validator

import (
	"github.com/gruporuiz/tripetl/internal/errors"
	"github.com/gruporuiz/tripetl/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ event.Validator = (*StorageEventValidator)(nil)

// ValidationError describes a trigger payload that must be rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: field=" + e.Field + ": " + e.Reason
}

// Unwrap ties every validation failure to the rejection sentinel.
func (e *ValidationError) Unwrap() error {
	return errors.ErrMissingEventInfo
}

// StorageEventValidator validates storage notifications before processing.
type StorageEventValidator struct{}

// NewStorageEventValidator creates a new storage event validator.
func NewStorageEventValidator() *StorageEventValidator {
	return &StorageEventValidator{}
}

// Validate checks the required fields of a storage event.
// Extension and bucket mismatches are not validation failures; they are skip
// decisions taken by the caller after validation passes.
func (v *StorageEventValidator) Validate(evt *event.StorageEvent) error {
	if evt == nil {
		return &ValidationError{Field: "event", Reason: "event is nil"}
	}
	if evt.Name == "" {
		return &ValidationError{Field: "name", Reason: "required field is missing"}
	}
	if evt.Bucket == "" {
		return &ValidationError{Field: "bucket", Reason: "required field is missing"}
	}
	return nil
}
