package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// csvHeader is the column layout of the per-review report.
var csvHeader = []string{
	"recommendationid",
	"voted_up",
	"status",
	"categories",
	"sentiment",
	"failure_reason",
	"attempts",
	"review_text",
}

// WriteCSV writes the per-review report to path, creating parent
// directories as needed.
func WriteCSV(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		fields := []string{
			row.Record.ID,
			strconv.FormatBool(row.Record.VotedUp),
			row.Status,
			joinLabels(row.Labels),
			row.Sentiment,
			row.FailureReason,
			strconv.Itoa(row.Attempts),
			row.Record.Text,
		}
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
