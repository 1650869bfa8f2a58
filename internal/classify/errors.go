// Package classify provides the abstract remote classification call and its
// Gemini-backed implementation.
package classify

import (
	"errors"
	"fmt"
)

// ErrorKind partitions classifier failures by how the pipeline must react.
type ErrorKind string

// Classifier error kinds.
const (
	// KindRateLimited means the provider throttled the call; retryable
	// after backing off.
	KindRateLimited ErrorKind = "rate_limited"
	// KindTransient covers network failures, timeouts and provider 5xx;
	// retryable with bounded attempts.
	KindTransient ErrorKind = "transient"
	// KindContentRejected means the provider refused the input (policy
	// filtering); never retryable with the same input.
	KindContentRejected ErrorKind = "content_rejected"
	// KindFatal covers auth and configuration failures; aborts the run.
	KindFatal ErrorKind = "fatal"
)

// Error is a typed classification failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classifier %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("classifier %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the pipeline may retry the call.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// KindOf extracts the error kind, defaulting to transient for untyped
// failures so unknown conditions still get bounded retries.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindTransient
}
