package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/review-analyzer/internal/types"
)

// Column names expected in the collector's CSV output.
const (
	colID       = "recommendationid"
	colText     = "review_text"
	colVotedUp  = "voted_up"
	colLanguage = "language"
	colVotesUp  = "votes_up"
	colFunny    = "votes_funny"
	colPlaytime = "author_playtime_hours"
	colCreated  = "timestamp_created"
	colDate     = "created_date"
)

var requiredColumns = []string{colID, colText, colVotedUp}

// Store holds the loaded record set. It is immutable after Load and safe
// for concurrent reads.
type Store struct {
	records  []types.Record
	byID     map[string]int
	warnings []string
}

// Load reads the dataset from a CSV file. Each record's identifier is taken
// from the recommendationid column; a missing or duplicated identifier
// degrades to a position-based fallback ID and is reported as a
// data-quality warning rather than silently accepted.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("opening %s", path), Cause: err}
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses CSV content from r. See Load.
func Read(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &LoadError{Message: "input is empty"}
	}
	if err != nil {
		return nil, &LoadError{Message: "reading header", Cause: err}
	}
	if len(header) > 0 {
		// The collector writes utf-8-sig, which prefixes a BOM to the
		// first header cell.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	store := &Store{byID: make(map[string]int)}
	row := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("reading row %d", row+1), Cause: err}
		}

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}

		votedUp, err := strconv.ParseBool(get(colVotedUp))
		if err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("row %d: invalid voted_up value %q", row+1, get(colVotedUp))}
		}

		rec := types.Record{
			ID:               get(colID),
			Text:             get(colText),
			VotedUp:          votedUp,
			Language:         get(colLanguage),
			VotesUp:          parseInt(get(colVotesUp)),
			VotesFunny:       parseInt(get(colFunny)),
			PlaytimeHours:    parseFloat(get(colPlaytime)),
			TimestampCreated: int64(parseInt(get(colCreated))),
			CreatedDate:      get(colDate),
			Position:         row,
		}

		if rec.ID == "" {
			rec.ID = store.fallbackFor(row)
			store.warnings = append(store.warnings,
				fmt.Sprintf("row %d has no %s; using fallback id %s", row+1, colID, rec.ID))
		} else if _, dup := store.byID[rec.ID]; dup {
			original := rec.ID
			rec.ID = store.fallbackFor(row)
			store.warnings = append(store.warnings,
				fmt.Sprintf("row %d duplicates id %s; using fallback id %s", row+1, original, rec.ID))
		}

		store.byID[rec.ID] = len(store.records)
		store.records = append(store.records, rec)
		row++
	}

	if len(store.records) == 0 {
		return nil, &LoadError{Message: "input contains no records"}
	}
	return store, nil
}

// Count returns the number of loaded records.
func (s *Store) Count() int {
	return len(s.records)
}

// All returns the records in input order. The slice must not be modified.
func (s *Store) All() []types.Record {
	return s.records
}

// IDs returns the record identifiers in input order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.records))
	for i, rec := range s.records {
		ids[i] = rec.ID
	}
	return ids
}

// Get returns the record with the given identifier.
func (s *Store) Get(id string) (types.Record, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return types.Record{}, false
	}
	return s.records[idx], true
}

// Warnings returns the data-quality warnings collected during load.
func (s *Store) Warnings() []string {
	return s.warnings
}

// Sample returns up to n records drawn pseudo-randomly with the given seed,
// in input order. A fixed seed keeps resumed runs operating on the same
// subset. n <= 0 or n >= Count returns all records.
func (s *Store) Sample(n int, seed int64) []types.Record {
	if n <= 0 || n >= len(s.records) {
		return s.records
	}
	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(s.records))[:n]
	// Restore input order so workers pull deterministically.
	chosen := make(map[int]bool, n)
	for _, idx := range picked {
		chosen[idx] = true
	}
	out := make([]types.Record, 0, n)
	for i, rec := range s.records {
		if chosen[i] {
			out = append(out, rec)
		}
	}
	return out
}

func fallbackID(row int) string {
	return fmt.Sprintf("row-%d", row)
}

// fallbackFor returns a fallback identifier for the row that is not already
// assigned. The plain row-<n> form can collide with a genuine
// recommendationid of the same shape, so taken candidates get a numeric
// suffix until a free one is found.
func (s *Store) fallbackFor(row int) string {
	id := fallbackID(row)
	for n := 1; ; n++ {
		if _, taken := s.byID[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s-%d", fallbackID(row), n)
	}
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// pandas writes integer columns as floats when NaNs are present.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
