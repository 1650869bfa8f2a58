// Package progress owns the durable, thread-safe record of classification
// outcomes: the progress snapshot, its atomic persistence, and its
// crash-consistent reload.
package progress

import "fmt"

// CorruptProgressError means the progress file exists but cannot be parsed
// or fails schema validation. It is recoverable: the caller should warn and
// continue with an empty snapshot rather than abort the run.
type CorruptProgressError struct {
	Path  string
	Cause error
}

func (e *CorruptProgressError) Error() string {
	return fmt.Sprintf("corrupt progress file %s: %v", e.Path, e.Cause)
}

func (e *CorruptProgressError) Unwrap() error {
	return e.Cause
}

// PersistError means durable state could not be written even after the
// immediate retry. Losing durability defeats the resumability guarantee,
// so callers treat it as fatal.
type PersistError struct {
	Path  string
	Cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist progress to %s: %v", e.Path, e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}
