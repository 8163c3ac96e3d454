// Package storage defines the snapshot store contract shared by all
// backends.
package storage

import (
	"context"

	"token-pnl-bot/internal/domain"
)

// SnapshotStore is a durable mapping from token identifier to baseline
// snapshot. Entries are written at most once per identifier and never
// mutated in place; removal is an explicit operator action.
type SnapshotStore interface {
	// InsertIfAbsent records the baseline snapshot for an identifier if
	// none exists yet. The check and the write are atomic per identifier:
	// under concurrent calls exactly one wins. When an entry already
	// exists it is returned unchanged with inserted=false, which is a
	// normal outcome, not an error. Durable backends persist the write
	// before returning.
	InsertIfAbsent(ctx context.Context, id domain.TokenIdentifier, quote domain.Quote, capturedAt int64, recordedBy string) (domain.Snapshot, bool, error)

	// Get retrieves the baseline for an identifier. Returns ErrNotFound
	// if the identifier was never tracked.
	Get(ctx context.Context, id domain.TokenIdentifier) (domain.Snapshot, error)

	// Remove deletes a tracked identifier. Returns removed=false when the
	// identifier was not tracked.
	Remove(ctx context.Context, id domain.TokenIdentifier) (bool, error)

	// List returns all tracked entries. Order is unspecified but stable
	// within a process lifetime.
	List(ctx context.Context) ([]domain.Tracked, error)
}
