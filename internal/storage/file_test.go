package storage

import (
	"context"
	"errors"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, KeyCart, []byte(`{"lines":[]}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	data, err := store.Get(ctx, KeyCart)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"lines":[]}` {
		t.Errorf("unexpected value: %s", data)
	}
}

func TestFileStore_MissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	_, err = store.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, KeyProcessedRef, []byte("ORD-1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, KeyProcessedRef, []byte("ORD-2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err := store.Get(ctx, KeyProcessedRef)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "ORD-2" {
		t.Errorf("expected ORD-2, got %s", data)
	}
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, KeyPendingOrder, []byte("{}")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Delete(ctx, KeyPendingOrder); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, KeyPendingOrder); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
	if _, err := store.Get(ctx, KeyPendingOrder); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
