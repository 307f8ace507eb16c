// Package event defines the storage notification types for the trip ETL service.
//
// # Trigger Contract
//
// Each ETL run is triggered by one storage notification, delivered as a JSON
// POST body. The two required attributes are the object name and the bucket:
//
//	evt, err := event.Parse(body)
//	if err != nil {
//	    // 400: body is not JSON
//	}
//
// # Skip Semantics
//
// Events that are well-formed but irrelevant are acknowledged without
// processing. The helpers on StorageEvent express those checks:
//
//	evt.IsJSONObject() // false for data.txt and friends
//
// # Object Addressing
//
// ObjectURI renders the gs:// URI used by both the storage download and the
// analytical load:
//
//	uri := evt.ObjectURI() // "gs://raw-bucket/export.json"
package event
