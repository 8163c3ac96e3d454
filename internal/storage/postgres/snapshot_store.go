package postgres

import (
	"context"
	"fmt"

	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
// Insert-if-absent atomicity comes from the primary key on address plus
// ON CONFLICT DO NOTHING: under concurrent inserts exactly one row wins
// and every other caller reads the winning row back.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertIfAbsent records the baseline for an identifier if none exists.
func (s *SnapshotStore) InsertIfAbsent(ctx context.Context, id domain.TokenIdentifier, quote domain.Quote, capturedAt int64, recordedBy string) (domain.Snapshot, bool, error) {
	if id.Key() == "" {
		return domain.Snapshot{}, false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tracked_tokens (
			address, price, market_cap, symbol, chain_tag, captured_at, recorded_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query,
		id.Key(),
		quote.Price,
		quote.MarketCap,
		quote.Symbol,
		quote.ChainTag,
		capturedAt,
		recordedBy,
	)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("insert snapshot: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return domain.Snapshot{
			Quote:      quote,
			CapturedAt: capturedAt,
			RecordedBy: recordedBy,
		}, true, nil
	}

	// Lost the race or already tracked: return the stored baseline.
	existing, err := s.Get(ctx, id)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read existing snapshot: %w", err)
	}
	return existing, false, nil
}

// Get retrieves the baseline for an identifier.
func (s *SnapshotStore) Get(ctx context.Context, id domain.TokenIdentifier) (domain.Snapshot, error) {
	query := `
		SELECT price, market_cap, symbol, chain_tag, captured_at, recorded_by
		FROM tracked_tokens
		WHERE address = $1
	`

	var snap domain.Snapshot
	err := s.pool.QueryRow(ctx, query, id.Key()).Scan(
		&snap.Quote.Price,
		&snap.Quote.MarketCap,
		&snap.Quote.Symbol,
		&snap.Quote.ChainTag,
		&snap.CapturedAt,
		&snap.RecordedBy,
	)
	if err != nil {
		if isNotFoundError(err) {
			return domain.Snapshot{}, storage.ErrNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// Remove deletes a tracked identifier.
func (s *SnapshotStore) Remove(ctx context.Context, id domain.TokenIdentifier) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tracked_tokens WHERE address = $1`, id.Key())
	if err != nil {
		return false, fmt.Errorf("remove snapshot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns all tracked entries ordered by address.
func (s *SnapshotStore) List(ctx context.Context) ([]domain.Tracked, error) {
	query := `
		SELECT address, price, market_cap, symbol, chain_tag, captured_at, recorded_by
		FROM tracked_tokens
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var result []domain.Tracked
	for rows.Next() {
		var t domain.Tracked
		if err := rows.Scan(
			&t.Address,
			&t.Snapshot.Quote.Price,
			&t.Snapshot.Quote.MarketCap,
			&t.Snapshot.Quote.Symbol,
			&t.Snapshot.Quote.ChainTag,
			&t.Snapshot.CapturedAt,
			&t.Snapshot.RecordedBy,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return result, nil
}
