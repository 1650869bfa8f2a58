package progress

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/review-analyzer/internal/schemas"
	"github.com/jonathan/review-analyzer/internal/types"
)

//go:embed snapshot_schema.json
var snapshotSchema string

// Store holds the progress snapshot and serializes every mutation through a
// single writer lock, so readers taking a snapshot never observe a
// partially applied result.
type Store struct {
	mu        sync.Mutex
	path      string
	saveEvery int
	sinceSave int
	snap      types.Snapshot
}

// Open loads the progress file at path, or starts empty when no file
// exists. A file that exists but fails to parse or violates the snapshot
// schema yields a usable empty store together with a *CorruptProgressError,
// so the caller can warn and continue instead of crashing the run.
// saveEvery is the auto-persist interval in completed classifications;
// zero disables auto-persist.
func Open(path string, saveEvery int) (*Store, error) {
	s := &Store{
		path:      path,
		saveEvery: saveEvery,
		snap:      emptySnapshot(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, &CorruptProgressError{Path: path, Cause: err}
	}

	if err := schemas.ValidateJSONString(snapshotSchema, string(data)); err != nil {
		return s, &CorruptProgressError{Path: path, Cause: err}
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s, &CorruptProgressError{Path: path, Cause: err}
	}
	if snap.SchemaVersion != types.SnapshotSchemaVersion {
		return s, &CorruptProgressError{
			Path:  path,
			Cause: fmt.Errorf("unsupported schema version %d", snap.SchemaVersion),
		}
	}
	if snap.Results == nil {
		snap.Results = make(map[string]types.ClassificationResult)
	}
	s.snap = snap
	return s, nil
}

func emptySnapshot() types.Snapshot {
	return types.Snapshot{
		SchemaVersion: types.SnapshotSchemaVersion,
		RunID:         uuid.NewString(),
		StartedAt:     time.Now().UTC(),
		Results:       make(map[string]types.ClassificationResult),
	}
}

// Path returns the durable file location.
func (s *Store) Path() string {
	return s.path
}

// SetTotal records how many records the current run covers.
func (s *Store) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Total = total
}

// RecordResult inserts or replaces the entry for the result's record ID and
// updates the counters. Every call counts one attempt; replacing an entry
// adjusts the per-status counts so they always describe the held results.
// Auto-persist fires every saveEvery completions; a persist failure (after
// its immediate retry) is returned as a *PersistError.
func (s *Store) RecordResult(res types.ClassificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.snap.Results[res.RecordID]; ok {
		switch prev.Status {
		case types.StatusSucceeded:
			s.snap.Counters.Succeeded--
		case types.StatusFailed:
			s.snap.Counters.Failed--
		}
	}
	s.snap.Results[res.RecordID] = res
	s.snap.Counters.Attempted++
	switch res.Status {
	case types.StatusSucceeded:
		s.snap.Counters.Succeeded++
	case types.StatusFailed:
		s.snap.Counters.Failed++
	}

	s.sinceSave++
	if s.saveEvery > 0 && s.sinceSave >= s.saveEvery {
		if err := s.persistLocked(); err != nil {
			return err
		}
		s.sinceSave = 0
	}
	return nil
}

// AddUsage accumulates provider token usage into the snapshot.
func (s *Store) AddUsage(u types.Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Usage.Add(u)
}

// SetSampling records the sampling parameters the run was invoked with, so
// a resumed run can detect that it is reconciling against a different
// record subset.
func (s *Store) SetSampling(size int, seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.SampleSize = size
	s.snap.SampleSeed = seed
}

// Sampling returns the persisted sampling parameters.
func (s *Store) Sampling() (size int, seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.SampleSize, s.snap.SampleSeed
}

// Counters returns the current counter values.
func (s *Store) Counters() types.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Counters
}

// TokensUsed returns the accumulated provider token total.
func (s *Store) TokensUsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Usage.TotalTokens()
}

// Snapshot returns a consistent point-in-time copy of the snapshot.
func (s *Store) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Persist writes the snapshot to the durable file atomically: the content
// goes to a temporary file which is then renamed over the target, so a
// crash mid-write never corrupts the previously durable state. A failed
// write is retried once immediately before giving up.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistLocked(); err != nil {
		return err
	}
	s.sinceSave = 0
	return nil
}

func (s *Store) persistLocked() error {
	err := s.writeSnapshot()
	if err != nil {
		// One immediate retry; transient filesystem hiccups are common
		// enough that a single retry preserves the run.
		err = s.writeSnapshot()
	}
	if err != nil {
		return &PersistError{Path: s.path, Cause: err}
	}
	return nil
}

func (s *Store) writeSnapshot() error {
	s.snap.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Reset discards the snapshot, including prior failed entries, and persists
// the fresh empty state so an interrupted restart cannot resurrect stale
// results.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = emptySnapshot()
	s.sinceSave = 0
	return s.persistLocked()
}
