package tool

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "toolbelt.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatal("NewSQLiteStore() = nil error, want failure for empty dsn")
	}
}

func TestSQLiteStoreUpsertAndGet(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, storeRegistration("alpha")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, found, err := store.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if got.Status != StatusUnverified {
		t.Fatalf("status = %q, want %q", got.Status, StatusUnverified)
	}
	if got.RegisteredAt.IsZero() {
		t.Fatal("RegisteredAt should be stamped on first insert")
	}
	action, ok := got.Manifest.Actions["run"]
	if !ok {
		t.Fatal("manifest lost the run action")
	}
	if field := action.Inputs["value"]; field.Type != TypeString || !field.Required {
		t.Fatalf("input field = %+v, want required string", field)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, found, err := store.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("Get() found = true, want false")
	}
}

func TestSQLiteStoreUpsertUpdatesInPlace(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, storeRegistration("alpha")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	first, _, err := store.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	updated := storeRegistration("alpha")
	updated.Status = StatusDisabled
	if err := store.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	regs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("len(regs) = %d, want 1", len(regs))
	}
	if regs[0].Status != StatusDisabled {
		t.Fatalf("status = %q, want %q", regs[0].Status, StatusDisabled)
	}
	if !regs[0].RegisteredAt.Equal(first.RegisteredAt) {
		t.Fatalf("RegisteredAt changed: %v -> %v", first.RegisteredAt, regs[0].RegisteredAt)
	}
}

func TestSQLiteStoreListSorted(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := store.Upsert(ctx, storeRegistration(name)); err != nil {
			t.Fatalf("Upsert(%s) error = %v", name, err)
		}
	}

	regs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if regs[i].Name != name {
			t.Fatalf("regs[%d].Name = %q, want %q", i, regs[i].Name, name)
		}
	}
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, storeRegistration("alpha")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "ghost"); err != nil {
		t.Fatalf("Delete(ghost) error = %v", err)
	}

	regs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(regs) != 0 {
		t.Fatalf("len(regs) = %d, want 0", len(regs))
	}
}
