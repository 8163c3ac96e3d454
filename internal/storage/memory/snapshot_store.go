// Package memory provides an in-memory snapshot store for tests and
// ephemeral runs. It offers no durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string]domain.Snapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string]domain.Snapshot),
	}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertIfAbsent records the baseline for an identifier if none exists.
func (s *SnapshotStore) InsertIfAbsent(_ context.Context, id domain.TokenIdentifier, quote domain.Quote, capturedAt int64, recordedBy string) (domain.Snapshot, bool, error) {
	if id.Key() == "" {
		return domain.Snapshot{}, false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[id.Key()]; ok {
		return existing, false, nil
	}

	snap := domain.Snapshot{
		Quote:      quote,
		CapturedAt: capturedAt,
		RecordedBy: recordedBy,
	}
	s.data[id.Key()] = snap
	return snap, true, nil
}

// Get retrieves the baseline for an identifier.
func (s *SnapshotStore) Get(_ context.Context, id domain.TokenIdentifier) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[id.Key()]
	if !ok {
		return domain.Snapshot{}, storage.ErrNotFound
	}
	return snap, nil
}

// Remove deletes a tracked identifier.
func (s *SnapshotStore) Remove(_ context.Context, id domain.TokenIdentifier) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id.Key()]; !ok {
		return false, nil
	}
	delete(s.data, id.Key())
	return true, nil
}

// List returns all tracked entries sorted by address for stable order.
func (s *SnapshotStore) List(_ context.Context) ([]domain.Tracked, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Tracked, 0, len(s.data))
	for addr, snap := range s.data {
		result = append(result, domain.Tracked{Address: addr, Snapshot: snap})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result, nil
}
