// Package export joins the loaded records with the progress snapshot into
// the final report artifacts: a per-review CSV and an aggregate statistics
// JSON document.
package export

import (
	"strings"

	"github.com/jonathan/review-analyzer/internal/types"
)

// Export row statuses. Succeeded and failed mirror the result statuses;
// unclassified marks records the snapshot has no entry for, so the report
// always covers the full input set.
const (
	StatusUnclassified = "unclassified"
)

// Row is one exported review: the source record joined with whatever
// outcome the snapshot holds for it.
type Row struct {
	Record        types.Record
	Status        string
	Labels        types.LabelSet
	Sentiment     string
	FailureReason string
	Attempts      int
}

// Classified reports whether the row carries a successful classification.
func (r Row) Classified() bool {
	return r.Status == string(types.StatusSucceeded)
}

// Merge joins records with the snapshot's results. The output has exactly
// one row per input record, in input order; records without a snapshot
// entry are marked unclassified rather than dropped.
func Merge(records []types.Record, snap types.Snapshot) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{Record: rec, Status: StatusUnclassified}
		if res, ok := snap.Results[rec.ID]; ok {
			row.Status = string(res.Status)
			row.Labels = res.Labels
			row.Sentiment = res.Sentiment
			row.FailureReason = res.FailureReason
			row.Attempts = res.Attempts
		}
		rows = append(rows, row)
	}
	return rows
}

// joinLabels renders a label set as a single CSV cell.
func joinLabels(labels types.LabelSet) string {
	return strings.Join(labels, ";")
}
