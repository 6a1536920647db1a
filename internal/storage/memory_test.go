package storage

import (
	"context"
	"testing"
)

func TestMemoryStoreImplementsStore(t *testing.T) {
	var _ Store = NewMemoryStore()
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.InsertFragments(ctx, testFragments()); err != nil {
		t.Fatalf("InsertFragments: %v", err)
	}

	got, err := store.GetFragment(ctx, "frag-2")
	if err != nil {
		t.Fatalf("GetFragment: %v", err)
	}
	if got.Content != "A waiting period of 30 days applies." {
		t.Errorf("content = %q", got.Content)
	}

	// Mutating the returned copy must not affect the store.
	got.Content = "mutated"
	again, _ := store.GetFragment(ctx, "frag-2")
	if again.Content == "mutated" {
		t.Error("store returned a shared reference")
	}

	fragments, err := store.ListFragments(ctx)
	if err != nil {
		t.Fatalf("ListFragments: %v", err)
	}
	if len(fragments) != 3 || fragments[0].ID != "frag-1" {
		t.Errorf("list order wrong: %v", fragments)
	}
}

func TestMemoryStoreDeleteByDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.InsertFragments(ctx, testFragments()); err != nil {
		t.Fatalf("InsertFragments: %v", err)
	}
	removed, err := store.DeleteByDocument(ctx, "doc-2")
	if err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	if len(removed) != 1 || removed[0] != "frag-3" {
		t.Errorf("removed = %v", removed)
	}
	n, _ := store.Count(ctx)
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}
