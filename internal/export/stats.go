package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/review-analyzer/internal/taxonomy"
)

// CategoryStat is the share one category holds within its polarity group.
type CategoryStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// PolarityStats aggregates the classified rows of one polarity.
type PolarityStats struct {
	Classified int                     `json:"classified"`
	Categories map[string]CategoryStat `json:"categories"`
}

// Stats is the aggregate view of a finished (or partially finished) run.
type Stats struct {
	Total        int `json:"total"`
	Classified   int `json:"classified"`
	Failed       int `json:"failed"`
	Unclassified int `json:"unclassified"`

	// Positive and Negative break classified rows down per category.
	// Percentages are relative to the polarity's classified count; a
	// multi-label row counts once per label, so they can sum above 100.
	Positive PolarityStats `json:"positive"`
	Negative PolarityStats `json:"negative"`

	// LabelCounts maps labels-per-row to how many classified rows carry
	// that many labels.
	LabelCounts map[int]int `json:"label_counts"`
}

// Compute derives aggregate statistics from merged rows.
func Compute(rows []Row) Stats {
	stats := Stats{
		Total:       len(rows),
		Positive:    newPolarityStats(true),
		Negative:    newPolarityStats(false),
		LabelCounts: make(map[int]int),
	}

	for _, row := range rows {
		if !row.Classified() {
			if row.Status == StatusUnclassified {
				stats.Unclassified++
			} else {
				stats.Failed++
			}
			continue
		}
		stats.Classified++
		stats.LabelCounts[len(row.Labels)]++

		group := &stats.Negative
		if row.Record.VotedUp {
			group = &stats.Positive
		}
		group.Classified++
		for _, tag := range row.Labels {
			cs := group.Categories[tag]
			cs.Count++
			group.Categories[tag] = cs
		}
	}

	finalizePercentages(&stats.Positive)
	finalizePercentages(&stats.Negative)
	return stats
}

func newPolarityStats(votedUp bool) PolarityStats {
	ps := PolarityStats{Categories: make(map[string]CategoryStat)}
	for _, c := range taxonomy.ForPolarity(votedUp) {
		ps.Categories[c.Tag] = CategoryStat{}
	}
	return ps
}

func finalizePercentages(ps *PolarityStats) {
	if ps.Classified == 0 {
		return
	}
	for tag, cs := range ps.Categories {
		cs.Percent = float64(cs.Count) / float64(ps.Classified) * 100
		ps.Categories[tag] = cs
	}
}

// WriteStats writes the aggregate statistics document to path as indented
// JSON.
func WriteStats(path string, stats Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	return nil
}
