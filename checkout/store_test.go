package checkout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/poliverai/poliver/types"
)

func sampleRecord(sid string) *types.PendingCheckout {
	return &types.PendingCheckout{
		SessionID: &sid,
		Type:      types.PurchaseCredits,
		AmountUSD: 5,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// storeConformance runs the shared Store contract against any backend.
func storeConformance(t *testing.T, store Store) {
	t.Helper()

	// Empty slot loads as (nil, nil).
	record, err := store.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if record != nil {
		t.Fatalf("load empty = %+v, want nil", record)
	}

	// Clearing an empty slot is a no-op.
	if err := store.Clear(); err != nil {
		t.Fatalf("clear empty: %v", err)
	}

	if err := store.Save(sampleRecord("cs_1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	record, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if record == nil || record.SessionID == nil || *record.SessionID != "cs_1" {
		t.Fatalf("load = %+v, want session cs_1", record)
	}
	if record.Type != types.PurchaseCredits || record.AmountUSD != 5 {
		t.Errorf("load = %+v, want credits $5", record)
	}

	// Last write wins: a second save replaces the slot entirely.
	second := sampleRecord("cs_2")
	second.Type = types.PurchaseSubscription
	if err := store.Save(second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	record, err = store.Load()
	if err != nil {
		t.Fatalf("load after overwrite: %v", err)
	}
	if record == nil || *record.SessionID != "cs_2" || record.Type != types.PurchaseSubscription {
		t.Fatalf("load after overwrite = %+v, want cs_2 subscription", record)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	record, err = store.Load()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if record != nil {
		t.Fatalf("load after clear = %+v, want nil", record)
	}
}

func TestMemStore(t *testing.T) {
	storeConformance(t, NewMemStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pending_checkout.json")
	storeConformance(t, NewFileStore(path))
}

func TestFileStore_NilSessionIDRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "pending.json"))

	record := sampleRecord("ignored")
	record.SessionID = nil
	if err := store.Save(record); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || loaded.SessionID != nil {
		t.Fatalf("loaded = %+v, want nil session id", loaded)
	}
}

func TestFileStore_CorruptSlotSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("expected decode error for corrupt slot")
	}
}

func TestFileStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "pending.json"))
	if err := store.Save(sampleRecord("cs_1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "pending.json" {
		t.Errorf("dir entries = %v, want only pending.json", entries)
	}
}

func TestRedisStore(t *testing.T) {
	srv := miniredis.RunT(t)

	store, err := NewRedisStore("redis://" + srv.Addr())
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	defer func() { _ = store.Close() }()

	storeConformance(t, store)
}

func TestRedisStore_InvalidURL(t *testing.T) {
	if _, err := NewRedisStore("://bad"); err == nil {
		t.Fatal("expected parse error")
	}
}
