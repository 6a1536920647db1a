package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/claimsight/claimsight/internal/models"
)

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	fragments map[string]*models.ContentFragment
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fragments: make(map[string]*models.ContentFragment)}
}

// InsertFragments stores copies of the fragments.
func (s *MemoryStore) InsertFragments(ctx context.Context, fragments []*models.ContentFragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fragments {
		cp := *f
		if _, exists := s.fragments[f.ID]; !exists {
			s.order = append(s.order, f.ID)
		}
		s.fragments[f.ID] = &cp
	}
	return nil
}

// GetFragment returns one fragment by ID.
func (s *MemoryStore) GetFragment(ctx context.Context, id string) (*models.ContentFragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fragments[id]
	if !ok {
		return nil, fmt.Errorf("fragment not found: %s", id)
	}
	cp := *f
	return &cp, nil
}

// ListFragments returns all fragments in insertion order.
func (s *MemoryStore) ListFragments(ctx context.Context) ([]*models.ContentFragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ContentFragment, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.fragments[id]
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteByDocument removes every fragment owned by documentID.
func (s *MemoryStore) DeleteByDocument(ctx context.Context, documentID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	remaining := s.order[:0]
	for _, id := range s.order {
		if s.fragments[id].DocumentID == documentID {
			removed = append(removed, id)
			delete(s.fragments, id)
		} else {
			remaining = append(remaining, id)
		}
	}
	s.order = remaining
	return removed, nil
}

// Count returns the number of stored fragments.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.fragments)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
