package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "wallet:address", "0xabc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if val, ok, err := store.Get(ctx, "wallet:address"); err != nil || !ok || val != "0xabc" {
		t.Fatalf("get: val=%q ok=%v err=%v", val, ok, err)
	}
	if err := store.Set(ctx, "wallet:address", "0xdef"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if val, _, _ := store.Get(ctx, "wallet:address"); val != "0xdef" {
		t.Fatalf("expected overwritten value, got %q", val)
	}
	if err := store.Delete(ctx, "wallet:address"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "wallet:address"); ok {
		t.Fatalf("expected key gone after delete")
	}
	// deleting a missing key is a no-op
	if err := store.Delete(ctx, "wallet:address"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestStoreListByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := map[string]string{
		"order:1":        "a",
		"order:2":        "b",
		"wallet:address": "0xabc",
		"order_shadow":   "c",
	}
	for key, value := range entries {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	got, err := store.List(ctx, "order:")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got["order:1"] != "a" || got["order:2"] != "b" {
		t.Fatalf("unexpected list result: %v", got)
	}

	// "_" is a LIKE wildcard; make sure it is treated literally.
	got, err = store.List(ctx, "order_")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got["order_shadow"] != "c" {
		t.Fatalf("expected escaped prefix match, got %v", got)
	}
}
