package types

import "time"

// LabelSet is the ordered set of category tags assigned to a record.
// After a successful classification it is never empty; the per-polarity
// catch-all tag guarantees at least one entry.
type LabelSet []string

// Contains reports whether the label set includes the given tag.
func (ls LabelSet) Contains(tag string) bool {
	for _, l := range ls {
		if l == tag {
			return true
		}
	}
	return false
}

// ResultStatus is the terminal status of a classification result.
type ResultStatus string

// Result status values.
const (
	StatusSucceeded ResultStatus = "succeeded"
	StatusFailed    ResultStatus = "failed"
)

// Failure reasons recorded on failed results. They mirror the classifier
// error taxonomy plus the retry-exhaustion case.
const (
	ReasonRateLimited      = "rate_limited"
	ReasonTransient        = "transient"
	ReasonContentRejected  = "content_rejected"
	ReasonFatal            = "fatal"
	ReasonAttemptsExceeded = "attempts_exceeded"
)

// ClassificationResult is the outcome of classifying one record. Once
// written to the progress store it is immutable; a retry produces a new
// result that replaces the prior one for the same record ID.
type ClassificationResult struct {
	RecordID      string       `json:"record_id"`
	Status        ResultStatus `json:"status"`
	Labels        LabelSet     `json:"labels,omitempty"`
	Sentiment     string       `json:"sentiment,omitempty"`
	RawResponse   string       `json:"raw_response,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
	Attempts      int          `json:"attempts"`
	CompletedAt   time.Time    `json:"completed_at"`
}

// Usage accumulates provider token consumption across classification calls.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns the combined input and output token count.
func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

// Add accumulates another usage sample into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Counters summarizes progress over a run.
type Counters struct {
	// Attempted counts every result write, including replacements.
	Attempted int `json:"attempted"`
	// Succeeded and Failed count the results currently held, by status.
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SnapshotSchemaVersion is the current progress-file schema version.
const SnapshotSchemaVersion = 1

// Snapshot is the durable point-in-time record of all classification
// outcomes. It is the sole source of truth for completed work; the record
// store is the sole source of truth for what must be classified.
type Snapshot struct {
	SchemaVersion int                             `json:"schema_version"`
	RunID         string                          `json:"run_id"`
	StartedAt     time.Time                       `json:"started_at"`
	SavedAt       time.Time                       `json:"saved_at"`
	Total         int                             `json:"total"`
	SampleSize    int                             `json:"sample_size,omitempty"`
	SampleSeed    int64                           `json:"sample_seed,omitempty"`
	Counters      Counters                        `json:"counters"`
	Usage         Usage                           `json:"usage"`
	Results       map[string]ClassificationResult `json:"results"`
}

// SuccessfulIDs returns the IDs of all records with a succeeded result.
func (s Snapshot) SuccessfulIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Results))
	for id, res := range s.Results {
		if res.Status == StatusSucceeded {
			ids[id] = true
		}
	}
	return ids
}

// TerminalIDs returns the IDs of all records with any recorded result,
// succeeded or failed. Failed results are terminal until an explicit
// restart, so both are excluded from automatic re-scheduling.
func (s Snapshot) TerminalIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Results))
	for id := range s.Results {
		ids[id] = true
	}
	return ids
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Results = make(map[string]ClassificationResult, len(s.Results))
	for id, res := range s.Results {
		cloned := res
		cloned.Labels = append(LabelSet(nil), res.Labels...)
		out.Results[id] = cloned
	}
	return out
}
