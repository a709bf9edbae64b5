package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the storage adapter.
var (
	// ErrDuplicate marks an insert that lost the race on the content
	// fingerprint. The pipeline treats it as a normal duplicate skip.
	ErrDuplicate = errors.New("duplicate news record")

	// ErrNotFound marks a record that vanished between stages. Fatal for the
	// item, never retried.
	ErrNotFound = errors.New("news record not found")
)

// InferenceError covers connection failures, timeouts, and non-success
// responses from the model endpoint. Transient: eligible for retry with
// backoff.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// ClassificationError marks model output that matched neither expected label
// nor any vocabulary entry. Content-level: re-prompted a small bounded number
// of times, never coerced.
type ClassificationError struct {
	Want string
	Got  string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unexpected classification output: want %s, got %q", e.Want, e.Got)
}

// AnalysisError marks a financial-analysis response where none of the
// expected labels were present.
type AnalysisError struct {
	Got string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("unparseable analysis output: %q", e.Got)
}
