package records

import "errors"

// ErrNotFound indicates a referenced entity (SKU, vendor) is absent from the
// catalog. Surfaced to the caller as a not-found result, never a crash.
var ErrNotFound = errors.New("record not found")

// ErrNotTrained indicates predict/classify was invoked before the required
// fit step.
var ErrNotTrained = errors.New("model not trained")

// ErrNoRecords indicates an analysis was requested over an empty collection.
var ErrNoRecords = errors.New("no records to analyze")
