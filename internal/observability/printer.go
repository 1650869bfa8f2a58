// Package observability provides formatted operator output for the pipeline.
// Everything printed here is advisory; correctness never depends on it.
package observability

import (
	"fmt"
	"io"
	"time"

	"github.com/jonathan/review-analyzer/internal/types"
)

// Printer handles formatted output for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer that writes to the given writer.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Infof prints an informational line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warningf prints a warning line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Warningf(format string, args ...any) {
	fmt.Fprintf(p.out, "Warning: "+format+"\n", args...)
}

// Progress prints one live progress line after a completion.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Progress(completed, total, failed int, eta time.Duration, tokens int64) {
	pct := 0.0
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}
	line := fmt.Sprintf("progress: %d/%d (%.1f%%)", completed, total, pct)
	if failed > 0 {
		line += fmt.Sprintf(" failed=%d", failed)
	}
	if eta > 0 {
		line += fmt.Sprintf(" eta=%s", formatETA(eta))
	}
	if tokens > 0 {
		line += fmt.Sprintf(" tokens=%s", FormatTokens(tokens))
	}
	fmt.Fprintln(p.out, line)
}

// Summary prints the end-of-run summary for a snapshot.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Summary(snap types.Snapshot, elapsed time.Duration) {
	fmt.Fprintf(p.out, "classified %d records (%d succeeded, %d failed) in %s\n",
		len(snap.Results), snap.Counters.Succeeded, snap.Counters.Failed, elapsed.Round(time.Second))
	if snap.Usage.TotalTokens() > 0 {
		fmt.Fprintf(p.out, "total tokens used: %s\n", FormatTokens(snap.Usage.TotalTokens()))
	}
}

// FormatTokens renders a token count compactly (532, 1.5K, 2.3M).
func FormatTokens(tokens int64) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fK", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

func formatETA(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	}
	if d >= time.Minute {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
