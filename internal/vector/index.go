// Package vector provides an in-memory vector index with cosine similarity
// search.
package vector

import "context"

// Index defines vector storage and nearest-neighbor search. IDs are fragment
// IDs. Implementations must tolerate concurrent reads during writes.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	// Search returns up to k hits ranked by similarity descending, ties
	// broken by insertion order.
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Size() int
}

// Result is a single vector search hit.
type Result struct {
	ID         string
	Similarity float64 // cosine similarity clamped to [0,1]
}
