// Package types provides type definitions for structured data used throughout the review-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Record represents a single review to be classified. Records are created
// once at load time and never mutated; the ID is the stable key that makes
// resume-after-interrupt correct across runs.
type Record struct {
	ID               string  `json:"id"`
	Text             string  `json:"text"`
	VotedUp          bool    `json:"voted_up"`
	Language         string  `json:"language,omitempty"`
	VotesUp          int     `json:"votes_up,omitempty"`
	VotesFunny       int     `json:"votes_funny,omitempty"`
	PlaytimeHours    float64 `json:"author_playtime_hours,omitempty"`
	TimestampCreated int64   `json:"timestamp_created,omitempty"`
	CreatedDate      string  `json:"created_date,omitempty"`

	// Position is the zero-based row index in the source file. It is kept
	// for diagnostics and as the fallback identifier source.
	Position int `json:"position"`
}

// Polarity returns the polarity group name used in prompts and statistics.
func (r Record) Polarity() string {
	if r.VotedUp {
		return "positive"
	}
	return "negative"
}
