package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/veloce/artrank/internal/domain/aggregate"
	"github.com/veloce/artrank/internal/domain/model"
)

// snapshotFile is the serialized aggregate snapshot shape.
type snapshotFile struct {
	SavedAt    time.Time              `json:"saved_at"`
	Aggregates []*aggregate.Aggregate `json:"aggregates"`
}

// WriteSnapshot persists a consistent copy of all aggregates to path.
// The file is written to a temporary sibling first and atomically
// renamed into place so a reader or a crash never observes a
// half-written snapshot.
func (s *MemStore) WriteSnapshot(ctx context.Context, path string) error {
	snap := snapshotFile{
		SavedAt:    time.Now().UTC(),
		Aggregates: s.All(ctx),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot replaces the store contents from a snapshot file. A
// missing file restores to empty and is not an error; a corrupt file
// restores to empty and returns ErrCorruptSnapshot so the caller can
// log it. Either way startup proceeds.
func (s *MemStore) RestoreSnapshot(ctx context.Context, path string) error {
	s.Reset(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range snap.Aggregates {
		if a == nil || a.ID == "" {
			continue
		}
		if a.Counters == nil {
			a.Counters = make(map[model.EventType]int64)
		}
		s.aggs[a.ID] = a
	}
	return nil
}
