package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/review-analyzer/internal/config"
	"github.com/jonathan/review-analyzer/internal/observability"
	"github.com/jonathan/review-analyzer/internal/progress"
	"github.com/jonathan/review-analyzer/internal/types"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a saved progress file",
	RunE:  runStatusCmd,
}

var statusProgressFile string

func init() {
	statusCommand.Flags().StringVar(&statusProgressFile, "progress-file", config.DefaultProgressFile, "Path to the durable progress file")
	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(statusProgressFile); os.IsNotExist(err) {
		return fmt.Errorf("no progress file at %s", statusProgressFile)
	}

	store, err := progress.Open(statusProgressFile, 0)
	if err != nil {
		var corrupt *progress.CorruptProgressError
		if errors.As(err, &corrupt) {
			return fmt.Errorf("progress file is corrupt: %w", corrupt)
		}
		return err
	}
	snap := store.Snapshot()

	fmt.Printf("run %s, started %s, last saved %s\n",
		snap.RunID, snap.StartedAt.Format(time.RFC3339), snap.SavedAt.Format(time.RFC3339))
	fmt.Printf("results: %d held (%d succeeded, %d failed), %d attempts total\n",
		len(snap.Results), snap.Counters.Succeeded, snap.Counters.Failed, snap.Counters.Attempted)
	if snap.Total > 0 {
		pct := float64(len(snap.Results)) / float64(snap.Total) * 100
		fmt.Printf("last run covered %d records (%.1f%% reached an outcome)\n", snap.Total, pct)
	}
	if snap.Usage.TotalTokens() > 0 {
		fmt.Printf("tokens used: %s (%s in, %s out)\n",
			observability.FormatTokens(snap.Usage.TotalTokens()),
			observability.FormatTokens(snap.Usage.InputTokens),
			observability.FormatTokens(snap.Usage.OutputTokens))
	}

	if snap.Counters.Failed > 0 {
		fmt.Println("failures by reason:")
		for _, line := range failureBreakdown(snap) {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}

func failureBreakdown(snap types.Snapshot) []string {
	counts := make(map[string]int)
	for _, res := range snap.Results {
		if res.Status == types.StatusFailed {
			counts[res.FailureReason]++
		}
	}
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	lines := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		lines = append(lines, fmt.Sprintf("%s: %d", reason, counts[reason]))
	}
	return lines
}
