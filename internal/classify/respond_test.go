package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON unchanged",
			input:    `{"categories": ["story"]}`,
			expected: `{"categories": ["story"]}`,
		},
		{
			name:     "json fenced block",
			input:    "```json\n{\"categories\": [\"story\"]}\n```",
			expected: `{"categories": ["story"]}`,
		},
		{
			name:     "generic fenced block",
			input:    "```\n{\"categories\": []}\n```",
			expected: `{"categories": []}`,
		},
		{
			name:     "fence with language identifier",
			input:    "```javascript\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n{\"a\": 1}\n  ",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
