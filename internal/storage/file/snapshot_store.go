// Package file provides a snapshot store persisted as a single JSON
// document. The whole file is read once at Open and rewritten on every
// mutation, which keeps the on-disk layout trivially inspectable.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/storage"
)

// record is the persisted form of one tracked baseline.
type record struct {
	Price      float64 `json:"price"`
	MarketCap  float64 `json:"marketCap"`
	Symbol     string  `json:"symbol"`
	ChainTag   string  `json:"chainTag"`
	CapturedAt int64   `json:"capturedAt"`
	RecordedBy string  `json:"recordedBy,omitempty"`
}

// SnapshotStore implements storage.SnapshotStore on a JSON file.
// Mutations are flushed to disk before the call returns; the write goes
// to a temp file in the same directory followed by a rename, so a crash
// mid-write leaves the previous state intact.
type SnapshotStore struct {
	mu   sync.RWMutex
	path string
	data map[string]record
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Open loads the store from path, creating parent directories as needed.
// A missing file means an empty tracked set.
func Open(path string) (*SnapshotStore, error) {
	if path == "" {
		return nil, storage.ErrInvalidInput
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	s := &SnapshotStore{
		path: path,
		data: make(map[string]record),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse snapshot file %s: %w", path, err)
	}
	return s, nil
}

// InsertIfAbsent records the baseline for an identifier if none exists.
// The write is durable before the call returns.
func (s *SnapshotStore) InsertIfAbsent(_ context.Context, id domain.TokenIdentifier, quote domain.Quote, capturedAt int64, recordedBy string) (domain.Snapshot, bool, error) {
	if id.Key() == "" {
		return domain.Snapshot{}, false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[id.Key()]; ok {
		return existing.snapshot(), false, nil
	}

	rec := record{
		Price:      quote.Price,
		MarketCap:  quote.MarketCap,
		Symbol:     quote.Symbol,
		ChainTag:   quote.ChainTag,
		CapturedAt: capturedAt,
		RecordedBy: recordedBy,
	}
	s.data[id.Key()] = rec
	if err := s.flushLocked(); err != nil {
		delete(s.data, id.Key())
		return domain.Snapshot{}, false, err
	}
	return rec.snapshot(), true, nil
}

// Get retrieves the baseline for an identifier.
func (s *SnapshotStore) Get(_ context.Context, id domain.TokenIdentifier) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id.Key()]
	if !ok {
		return domain.Snapshot{}, storage.ErrNotFound
	}
	return rec.snapshot(), nil
}

// Remove deletes a tracked identifier, flushing before returning.
func (s *SnapshotStore) Remove(_ context.Context, id domain.TokenIdentifier) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[id.Key()]
	if !ok {
		return false, nil
	}
	delete(s.data, id.Key())
	if err := s.flushLocked(); err != nil {
		s.data[id.Key()] = rec
		return false, err
	}
	return true, nil
}

// List returns all tracked entries sorted by address for stable order.
func (s *SnapshotStore) List(_ context.Context) ([]domain.Tracked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Tracked, 0, len(s.data))
	for addr, rec := range s.data {
		result = append(result, domain.Tracked{Address: addr, Snapshot: rec.snapshot()})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result, nil
}

// flushLocked writes the full map to disk. Callers hold s.mu.
func (s *SnapshotStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tracked-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (r record) snapshot() domain.Snapshot {
	return domain.Snapshot{
		Quote: domain.Quote{
			Price:     r.Price,
			MarketCap: r.MarketCap,
			Symbol:    r.Symbol,
			ChainTag:  r.ChainTag,
		},
		CapturedAt: r.CapturedAt,
		RecordedBy: r.RecordedBy,
	}
}
