package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, authenticatedSession("T1", 42)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.AccessToken != "T1" || !got.IsAuthenticated || got.User == nil || got.User.ID != 42 {
		t.Fatalf("unexpected session after load: %+v", got)
	}
}

func TestFileStoreLoadMissingIsEmpty(t *testing.T) {
	store := NewFileStore(t.TempDir())

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty session, got %+v", got)
	}
}

func TestFileStoreLoadCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := os.WriteFile(store.Path(), []byte("{truncated"), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty session for corrupt file, got %+v", got)
	}
}

func TestFileStoreWritesOwnerOnly(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if err := store.Save(context.Background(), authenticatedSession("T1", 1)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, authenticatedSession("T1", 1)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("first clear failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(store.Path()), StorageKey+".json")); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, stat err = %v", err)
	}
}
