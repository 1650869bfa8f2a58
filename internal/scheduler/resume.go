package scheduler

import (
	"github.com/jonathan/review-analyzer/internal/progress"
	"github.com/jonathan/review-analyzer/internal/types"
)

// Reconcile applies the resume policy to the loaded records and returns the
// records that still need classification, in input order.
//
// Continue keeps every record whose ID has no terminal entry in the
// snapshot; both succeeded and failed entries are terminal, so a failed
// record is not silently retried across runs. ReportOnly returns nothing to
// dispatch. Restart wipes the snapshot first, so every record is pending
// again.
func Reconcile(records []types.Record, store *progress.Store, policy Policy) ([]types.Record, error) {
	switch policy {
	case PolicyReportOnly:
		return nil, nil
	case PolicyRestart:
		if err := store.Reset(); err != nil {
			return nil, err
		}
		return records, nil
	}

	terminal := store.Snapshot().TerminalIDs()
	pending := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if !terminal[rec.ID] {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}
