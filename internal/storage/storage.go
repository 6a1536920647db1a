// Package storage defines persistence for content fragments and their vectors.
package storage

import (
	"context"

	"github.com/claimsight/claimsight/internal/models"
)

// Store persists fragments keyed by fragment ID, associated with a source
// document ID for bulk deletion. Writes are atomic per fragment: concurrent
// readers never observe a partially-written record.
type Store interface {
	// InsertFragments stores the fragments, vectors included.
	InsertFragments(ctx context.Context, fragments []*models.ContentFragment) error
	// GetFragment returns one fragment by ID.
	GetFragment(ctx context.Context, id string) (*models.ContentFragment, error)
	// ListFragments returns all fragments in insertion order.
	ListFragments(ctx context.Context) ([]*models.ContentFragment, error)
	// DeleteByDocument removes every fragment owned by documentID and returns
	// their IDs. Removing zero fragments is not an error.
	DeleteByDocument(ctx context.Context, documentID string) ([]string, error)
	// Count returns the number of stored fragments.
	Count(ctx context.Context) (int64, error)
	Close() error
}
