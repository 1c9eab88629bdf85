package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/mossline/ledgermind/internal/common"
)

func TestViewState_SaveAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	blob := []byte(`{"columns":{"date":120,"description":340}}`)
	if err := store.SaveViewState(ctx, "transactions", blob); err != nil {
		t.Fatalf("SaveViewState() = %v", err)
	}

	got, err := store.GetViewState(ctx, "transactions")
	if err != nil {
		t.Fatalf("GetViewState() = %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("blob = %s, want %s", got, blob)
	}
}

func TestViewState_UpsertOverwrites(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveViewState(ctx, "transactions", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("first save = %v", err)
	}
	if err := store.SaveViewState(ctx, "transactions", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second save = %v", err)
	}

	got, err := store.GetViewState(ctx, "transactions")
	if err != nil {
		t.Fatalf("GetViewState() = %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Errorf("blob = %s, want the second write", got)
	}
}

func TestViewState_MissingView(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetViewState(context.Background(), "nonexistent")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetViewState(nonexistent) = %v, want ErrNotFound", err)
	}
}
