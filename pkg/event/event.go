// Package event defines the storage notification types that trigger an ETL run.
//
// The trigger contract mirrors a Google Cloud Storage object-finalize
// notification delivered over HTTP: a JSON body carrying at least the object
// name and the bucket it landed in.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotJSON marks a notification body that does not decode as JSON.
// The trigger responds 400 to these.
var ErrNotJSON = errors.New("request body is not JSON")

// StorageEvent is the payload of an object-finalize notification.
// Only Name and Bucket are required by the trigger contract; the remaining
// attributes are carried through for logging when the platform provides them.
type StorageEvent struct {
	Name        string `json:"name"`
	Bucket      string `json:"bucket"`
	ContentType string `json:"contentType,omitempty"`
	Size        string `json:"size,omitempty"`
	TimeCreated string `json:"timeCreated,omitempty"`
	Generation  string `json:"generation,omitempty"`
}

// Parse decodes a StorageEvent from a raw notification body.
// A body that is not a JSON object is a parse error; field-level checks are
// left to the validator.
func Parse(body []byte) (*StorageEvent, error) {
	var evt StorageEvent
	if err := json.Unmarshal(bytes.TrimSpace(body), &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return &evt, nil
}

// ObjectURI returns the gs:// URI of the object the event refers to.
func (e *StorageEvent) ObjectURI() string {
	return fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
}

// IsJSONObject reports whether the event names a .json object.
// Objects with any other extension are skipped, not rejected.
func (e *StorageEvent) IsJSONObject() bool {
	return strings.HasSuffix(e.Name, ".json")
}

// Validator validates storage events before processing.
type Validator interface {
	// Validate checks that a storage event carries the required fields.
	Validate(evt *StorageEvent) error
}
