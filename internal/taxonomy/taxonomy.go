// Package taxonomy defines the fixed category enumeration reviews are
// classified into. The taxonomy is split into two polarity-conditioned
// groups: positive categories apply only to recommended reviews, negative
// categories only to not-recommended ones. Each group carries a catch-all
// tag so a successful classification never yields an empty label set.
package taxonomy

import (
	"strings"

	"github.com/jonathan/review-analyzer/internal/types"
)

// Category is one tag from the fixed enumeration.
type Category struct {
	Tag         string
	Description string
}

// Positive categories, applied when the review recommends the product.
var positive = []Category{
	{"story", "historical setting, plot, literary quality, narrative"},
	{"art-audio", "visuals, music, sound design, artistic presentation"},
	{"gameplay", "mechanics, innovation, controls, game design"},
	{"emotional", "emotional resonance, nostalgia, support for the developers"},
	{"other-positive", "praise with no specific reason given"},
}

// Negative categories, applied when the review does not recommend.
var negative = []Category{
	{"technical-quality", "optimization, bugs, stutter, crashes, performance"},
	{"game-content", "not fun, difficulty, map or boss design, feel, UI"},
	{"historical-controversy", "historical accuracy disputes, sensitive or contested content"},
	{"marketing", "hype, publisher issues, pricing, demo leaks, pre-order handling"},
	{"post-launch", "compensation, patch pace, official communication after release"},
	{"other-negative", "venting or complaints with no specific reason given"},
}

// Catch-all tags, one per polarity.
const (
	CatchAllPositive = "other-positive"
	CatchAllNegative = "other-negative"
)

// ForPolarity returns the category group matching the record's polarity.
func ForPolarity(votedUp bool) []Category {
	if votedUp {
		return positive
	}
	return negative
}

// CatchAll returns the catch-all tag for a polarity.
func CatchAll(votedUp bool) string {
	if votedUp {
		return CatchAllPositive
	}
	return CatchAllNegative
}

// IsValid reports whether tag belongs to the polarity's category group.
func IsValid(tag string, votedUp bool) bool {
	for _, c := range ForPolarity(votedUp) {
		if c.Tag == tag {
			return true
		}
	}
	return false
}

// Normalize filters raw to the valid tags for the polarity, de-duplicates
// while preserving order, and falls back to the catch-all when nothing
// valid remains. The returned set is never empty.
func Normalize(raw []string, votedUp bool) types.LabelSet {
	seen := make(map[string]bool, len(raw))
	var out types.LabelSet
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] || !IsValid(tag, votedUp) {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		out = types.LabelSet{CatchAll(votedUp)}
	}
	return out
}

// PromptList renders the polarity's categories as "- tag: description"
// lines for inclusion in a classification prompt.
func PromptList(votedUp bool) string {
	var sb strings.Builder
	for _, c := range ForPolarity(votedUp) {
		sb.WriteString("- ")
		sb.WriteString(c.Tag)
		sb.WriteString(": ")
		sb.WriteString(c.Description)
		sb.WriteString("\n")
	}
	return sb.String()
}

// AllTags returns every tag across both polarity groups, positive first.
func AllTags() []string {
	tags := make([]string, 0, len(positive)+len(negative))
	for _, c := range positive {
		tags = append(tags, c.Tag)
	}
	for _, c := range negative {
		tags = append(tags, c.Tag)
	}
	return tags
}
