package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force in-memory vector index. Vectors need not be
// pre-normalized; similarity is full cosine.
type MemoryIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	norms      []float64
	mu         sync.RWMutex
}

// NewMemoryIndex creates an index for vectors of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends vectors with the given IDs.
func (m *MemoryIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, vec)
		m.norms = append(m.norms, L2Norm(vec))
	}
	return nil
}

// Search returns the top-k hits by cosine similarity. Insertion order breaks
// ties, so repeated identical queries against an unchanged index return the
// same ranked list.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	queryNorm := L2Norm(query)
	type scored struct {
		pos        int
		similarity float64
	}
	scores := make([]scored, len(m.ids))
	for i, vec := range m.vectors {
		scores[i] = scored{pos: i, similarity: CosineSimilarity(query, queryNorm, vec, m.norms[i])}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].similarity > scores[j].similarity })
	if k > len(scores) {
		k = len(scores)
	}
	results := make([]*Result, k)
	for i := 0; i < k; i++ {
		results[i] = &Result{ID: m.ids[scores[i].pos], Similarity: scores[i].similarity}
	}
	return results, nil
}

// Remove drops vectors by ID. Unknown IDs are ignored.
func (m *MemoryIndex) Remove(ctx context.Context, ids []string) error {
	removeSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		removeSet[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	newIDs := m.ids[:0]
	newVectors := m.vectors[:0]
	newNorms := m.norms[:0]
	for i, id := range m.ids {
		if !removeSet[id] {
			newIDs = append(newIDs, id)
			newVectors = append(newVectors, m.vectors[i])
			newNorms = append(newNorms, m.norms[i])
		}
	}
	m.ids = newIDs
	m.vectors = newVectors
	m.norms = newNorms
	return nil
}

// Size returns the number of indexed vectors.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
