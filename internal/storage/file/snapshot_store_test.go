package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"token-pnl-bot/internal/domain"
	"token-pnl-bot/internal/storage"
)

var testID = domain.TokenIdentifier{
	Address: "0xabcdef1234567890abcdef1234567890abcdef12",
	Family:  domain.ChainEVM,
}

func tempStore(t *testing.T) (*SnapshotStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracked.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store, path
}

func TestSnapshotStore_PersistsAcrossReopen(t *testing.T) {
	store, path := tempStore(t)
	ctx := context.Background()

	quote := domain.Quote{Price: 0.0001, MarketCap: 100000, Symbol: "SMP", ChainTag: "bsc"}
	if _, inserted, err := store.InsertIfAbsent(ctx, testID, quote, 1700000000000, "alice"); err != nil || !inserted {
		t.Fatalf("InsertIfAbsent: inserted=%v err=%v", inserted, err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	snap, err := reopened.Get(ctx, testID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if snap.Quote != quote || snap.CapturedAt != 1700000000000 || snap.RecordedBy != "alice" {
		t.Errorf("snapshot mismatch after reopen: %+v", snap)
	}
}

func TestSnapshotStore_DuplicateKeepsBaseline(t *testing.T) {
	store, path := tempStore(t)
	ctx := context.Background()

	first := domain.Quote{Price: 0.0001, MarketCap: 100000}
	second := domain.Quote{Price: 0.0009, MarketCap: 550000}

	store.InsertIfAbsent(ctx, testID, first, 1, "")
	snap, inserted, err := store.InsertIfAbsent(ctx, testID, second, 2, "")
	if err != nil {
		t.Fatalf("InsertIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("expected inserted=false on duplicate")
	}
	if snap.Quote != first {
		t.Errorf("expected first quote, got %+v", snap.Quote)
	}

	// The file must still hold the baseline, not the later quote.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.Get(ctx, testID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Quote != first {
		t.Errorf("baseline overwritten on disk: %+v", got.Quote)
	}
}

func TestSnapshotStore_RemovePersists(t *testing.T) {
	store, path := tempStore(t)
	ctx := context.Background()

	store.InsertIfAbsent(ctx, testID, domain.Quote{Symbol: "SMP"}, 1, "")
	removed, err := store.Remove(ctx, testID)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, err := reopened.Get(ctx, testID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove+reopen, got %v", err)
	}
}

func TestSnapshotStore_ConcurrentInsertsSingleWinner(t *testing.T) {
	store, _ := tempStore(t)
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			quote := domain.Quote{Price: float64(n + 1)}
			_, inserted, err := store.InsertIfAbsent(ctx, testID, quote, int64(n), "")
			if err != nil {
				t.Errorf("InsertIfAbsent failed: %v", err)
				return
			}
			if inserted {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
}

func TestOpen_MissingFileMeansEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sub", "dir", "tracked.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	entries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty store, got %d entries", len(entries))
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}
