package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/review-analyzer/internal/types"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		tokens int64
		want   string
	}{
		{0, "0"},
		{532, "532"},
		{1_500, "1.5K"},
		{999_999, "1000.0K"},
		{2_300_000, "2.3M"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTokens(tt.tokens))
	}
}

func TestProgress_Line(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Progress(25, 100, 3, 90*time.Second, 15_000)
	line := buf.String()
	assert.Contains(t, line, "25/100")
	assert.Contains(t, line, "25.0%")
	assert.Contains(t, line, "failed=3")
	assert.Contains(t, line, "eta=1.5m")
	assert.Contains(t, line, "tokens=15.0K")
}

func TestProgress_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Progress(1, 10, 0, 0, 0)
	line := buf.String()
	assert.NotContains(t, line, "failed=")
	assert.NotContains(t, line, "eta=")
	assert.NotContains(t, line, "tokens=")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	snap := types.Snapshot{
		Counters: types.Counters{Attempted: 12, Succeeded: 9, Failed: 1},
		Usage:    types.Usage{InputTokens: 900, OutputTokens: 100},
		Results: map[string]types.ClassificationResult{
			"a": {}, "b": {}, "c": {}, "d": {}, "e": {},
			"f": {}, "g": {}, "h": {}, "i": {}, "j": {},
		},
	}
	p.Summary(snap, 125*time.Second)

	out := buf.String()
	assert.Contains(t, out, "10 records")
	assert.Contains(t, out, "9 succeeded")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, out, "1.0K")
}

func TestWarningf_Prefix(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Warningf("row %d is odd", 7)
	assert.Equal(t, "Warning: row 7 is odd\n", buf.String())
}
