package classify

import (
	"context"

	"github.com/jonathan/review-analyzer/internal/types"
)

// Outcome is a successful classification: the validated label set plus the
// provider's free-form sentiment annotation and token accounting.
type Outcome struct {
	Labels      types.LabelSet
	Sentiment   string
	RawResponse string
	Usage       types.Usage
}

// Classifier is the abstract remote classification call. Implementations
// hold no per-record state; a shared connection is the only thing retained
// between calls.
type Classifier interface {
	// Classify assigns category labels to one review. The polarity hint
	// selects which half of the taxonomy applies. Failures are *Error
	// values carrying an ErrorKind.
	Classify(ctx context.Context, text string, votedUp bool) (*Outcome, error)

	// Ping performs a connectivity self-test. It must succeed before any
	// dispatch begins; failure is treated as fatal.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
