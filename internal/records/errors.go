// Package records loads the review dataset from the collector's CSV output
// and exposes it as an immutable, identifier-keyed record store.
package records

import "fmt"

// LoadError represents a failure to load or validate the input dataset.
// It aborts the run before any classification is dispatched.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
