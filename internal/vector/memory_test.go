package vector

import (
	"context"
	"math"
	"testing"
)

func TestMemoryIndexSearchRanking(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	ctx := context.Background()

	ids := []string{"a", "b", "c"}
	vectors := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(ctx, ids, vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" || results[2].ID != "c" {
		t.Errorf("ranking = %s, %s, %s", results[0].ID, results[1].ID, results[2].ID)
	}
	if math.Abs(results[0].Similarity-1.0) > 1e-9 {
		t.Errorf("exact match similarity = %v, want 1.0", results[0].Similarity)
	}
	if results[2].Similarity != 0 {
		t.Errorf("orthogonal similarity = %v, want 0", results[2].Similarity)
	}
}

func TestMemoryIndexSearchIdempotent(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	// Identical vectors tie; insertion order must break the tie the same
	// way on every call.
	ids := []string{"first", "second", "third"}
	vec := []float32{1, 1}
	if err := idx.Add(ctx, ids, [][]float32{vec, vec, vec}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for run := 0; run < 5; run++ {
		results, err := idx.Search(ctx, []float32{1, 1}, 3)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		for i, want := range ids {
			if results[i].ID != want {
				t.Fatalf("run %d: position %d = %s, want %s", run, i, results[i].ID, want)
			}
		}
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewMemoryIndex(3)
	ctx := context.Background()

	if err := idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}); err == nil {
		t.Error("Add with wrong dimension should fail")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("Search with wrong dimension should fail")
	}
}

func TestMemoryIndexRemove(t *testing.T) {
	idx, _ := NewMemoryIndex(2)
	ctx := context.Background()

	idx.Add(ctx, []string{"a", "b", "c"}, [][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err := idx.Remove(ctx, []string{"b", "missing"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if idx.Size() != 2 {
		t.Errorf("size = %d, want 2", idx.Size())
	}
	results, _ := idx.Search(ctx, []float32{0, 1}, 3)
	for _, r := range results {
		if r.ID == "b" {
			t.Error("removed vector still returned")
		}
	}
}

func TestCosineSimilarityClamped(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	got := CosineSimilarity(a, L2Norm(a), b, L2Norm(b))
	if got != 0 {
		t.Errorf("opposite vectors = %v, want 0 after clamping", got)
	}
}

func TestIsDegenerate(t *testing.T) {
	if !IsDegenerate([]float32{0.0005, -0.0002}, 0.001) {
		t.Error("near-zero vector should be degenerate")
	}
	if IsDegenerate([]float32{0.0005, 0.5}, 0.001) {
		t.Error("vector with one real component is not degenerate")
	}
	if !IsDegenerate(nil, 0.001) {
		t.Error("empty vector is degenerate")
	}
}
