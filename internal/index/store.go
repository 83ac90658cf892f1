package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"finrag/internal/models"
)

// Store owns the persisted index snapshot: a single JSON array of chunk
// records. The in-memory copy is swapped wholesale on Replace, so
// readers holding a Snapshot never observe a partial rebuild.
type Store struct {
	path string

	mu      sync.RWMutex
	records []models.ChunkRecord
}

// Open loads the snapshot at path. A missing file is an empty index;
// malformed content or mixed embedding dimensionality is an error, the
// store does not self-heal.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}

	var records []models.ChunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	if err := checkDimensions(records); err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	s.records = records
	return s, nil
}

// Snapshot returns the current record slice. Callers must treat it as
// read-only; Replace installs a fresh slice rather than mutating it.
func (s *Store) Snapshot() []models.ChunkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Replace persists the new snapshot and swaps the in-memory copy. The
// write goes to a temp file in the same directory followed by a rename,
// so a crash mid-write leaves the previous snapshot intact.
func (s *Store) Replace(records []models.ChunkRecord) error {
	if err := checkDimensions(records); err != nil {
		return err
	}
	if records == nil {
		records = []models.ChunkRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("install index: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

// checkDimensions enforces the snapshot invariant: every record carries
// an embedding of the same non-zero length.
func checkDimensions(records []models.ChunkRecord) error {
	dim := -1
	for _, rec := range records {
		if len(rec.Embedding) == 0 {
			return fmt.Errorf("record %s has an empty embedding", rec.ID)
		}
		if dim == -1 {
			dim = len(rec.Embedding)
			continue
		}
		if len(rec.Embedding) != dim {
			return fmt.Errorf("record %s has dimension %d, want %d", rec.ID, len(rec.Embedding), dim)
		}
	}
	return nil
}
