package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPolarity_GroupsAreDisjoint(t *testing.T) {
	pos := ForPolarity(true)
	neg := ForPolarity(false)
	require.NotEmpty(t, pos)
	require.NotEmpty(t, neg)

	negTags := make(map[string]bool)
	for _, c := range neg {
		negTags[c.Tag] = true
	}
	for _, c := range pos {
		assert.False(t, negTags[c.Tag], "tag %q appears in both groups", c.Tag)
	}
}

func TestCatchAll_BelongsToItsGroup(t *testing.T) {
	assert.True(t, IsValid(CatchAll(true), true))
	assert.True(t, IsValid(CatchAll(false), false))
	assert.False(t, IsValid(CatchAll(true), false))
	assert.False(t, IsValid(CatchAll(false), true))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		votedUp bool
		want    []string
	}{
		{
			name:    "valid tags kept in order",
			raw:     []string{"story", "gameplay"},
			votedUp: true,
			want:    []string{"story", "gameplay"},
		},
		{
			name:    "case and whitespace normalized",
			raw:     []string{" Story ", "GAMEPLAY"},
			votedUp: true,
			want:    []string{"story", "gameplay"},
		},
		{
			name:    "duplicates removed",
			raw:     []string{"story", "story", "story"},
			votedUp: true,
			want:    []string{"story"},
		},
		{
			name:    "wrong polarity tags filtered",
			raw:     []string{"technical-quality", "story"},
			votedUp: true,
			want:    []string{"story"},
		},
		{
			name:    "empty input falls back to catch-all",
			raw:     nil,
			votedUp: true,
			want:    []string{"other-positive"},
		},
		{
			name:    "all invalid falls back to negative catch-all",
			raw:     []string{"nonsense", "story"},
			votedUp: false,
			want:    []string{"other-negative"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.votedUp)
			assert.Equal(t, tt.want, []string(got))
			assert.NotEmpty(t, got, "normalized label set must never be empty")
		})
	}
}

func TestPromptList_IncludesEveryTag(t *testing.T) {
	list := PromptList(false)
	for _, c := range ForPolarity(false) {
		assert.Contains(t, list, c.Tag)
		assert.Contains(t, list, c.Description)
	}
}

func TestAllTags_CoversBothGroups(t *testing.T) {
	tags := AllTags()
	assert.Len(t, tags, len(ForPolarity(true))+len(ForPolarity(false)))
	assert.Contains(t, tags, "story")
	assert.Contains(t, tags, "technical-quality")
}
