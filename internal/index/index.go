// Package index provides the semantic fragment index: vector similarity
// search with a deterministic keyword fallback.
package index

import (
	"context"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/models"
	"github.com/claimsight/claimsight/internal/storage"
	"github.com/claimsight/claimsight/internal/vector"
)

// degenerateEpsilon bounds the per-component magnitude below which a query
// vector is considered a signal of a non-functional embedding backend.
const degenerateEpsilon = 0.001

// Options tunes the index. The vector and keyword thresholds are independent
// on purpose: cosine similarity and keyword-overlap scores are not on a
// comparable scale.
type Options struct {
	Dimensions          int
	SimilarityThreshold float64
	KeywordThreshold    float64
}

// applyDefaults fills zero values.
func (o *Options) applyDefaults() {
	if o.Dimensions <= 0 {
		o.Dimensions = llm.DefaultEmbeddingDimensions
	}
	if o.SimilarityThreshold == 0 {
		o.SimilarityThreshold = 0.7
	}
	if o.KeywordThreshold == 0 {
		o.KeywordThreshold = 0.2
	}
}

// Index is an append-only store of content fragments with dense vectors.
// Insert and Search may interleave across concurrent requests.
type Index struct {
	store   storage.Store
	vectors vector.Index
	client  llm.Client
	opts    Options
	logger  *zap.Logger
}

// Stats reports index size and health for status endpoints.
type Stats struct {
	Count  int64  `json:"total_fragments"`
	Status string `json:"status"`
}

// New creates an index over store, rehydrating the in-memory vector index
// from previously persisted fragments.
func New(store storage.Store, client llm.Client, logger *zap.Logger, opts Options) (*Index, error) {
	opts.applyDefaults()
	vectors, err := vector.NewMemoryIndex(opts.Dimensions)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		store:   store,
		vectors: vectors,
		client:  client,
		opts:    opts,
		logger:  logger,
	}
	if err := idx.rehydrate(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

// rehydrate loads persisted vectors into the memory index. Fragments stored
// with a mismatched vector length are re-embedded deterministically so the
// index stays searchable after a dimension change.
func (idx *Index) rehydrate(ctx context.Context) error {
	fragments, err := idx.store.ListFragments(ctx)
	if err != nil {
		return err
	}
	for _, f := range fragments {
		vec := f.Vector
		if len(vec) != idx.opts.Dimensions {
			vec = llm.DeterministicEmbedding(f.Content, idx.opts.Dimensions)
		}
		if err := idx.vectors.Add(ctx, []string{f.ID}, [][]float32{vec}); err != nil {
			return err
		}
	}
	if len(fragments) > 0 {
		idx.logger.Info("rehydrated vector index", zap.Int("fragments", len(fragments)))
	}
	return nil
}

// Insert embeds and stores fragments. It returns false on backend failure
// and never panics; embedding failures degrade to deterministic vectors
// rather than failing the insert.
func (idx *Index) Insert(ctx context.Context, fragments []*models.ContentFragment) bool {
	if len(fragments) == 0 {
		return true
	}
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Content
	}
	embeddings := idx.embed(ctx, texts)

	ids := make([]string, len(fragments))
	for i, f := range fragments {
		f.Vector = embeddings[i]
		ids[i] = f.ID
	}
	if err := idx.store.InsertFragments(ctx, fragments); err != nil {
		idx.logger.Error("failed to persist fragments", zap.Error(err))
		return false
	}
	if err := idx.vectors.Add(ctx, ids, embeddings); err != nil {
		idx.logger.Error("failed to index vectors", zap.Error(err))
		return false
	}
	idx.logger.Info("indexed fragments", zap.Int("count", len(fragments)))
	return true
}

// Search retrieves the most relevant fragments for query. Vector search is
// tried first; a degenerate query vector, a vector-store error, or an empty
// surviving set routes to the keyword fallback. Search never fails: the
// worst case is an empty result.
func (idx *Index) Search(ctx context.Context, query *models.StructuredQuery, limit int) []models.RetrievedFragment {
	if limit <= 0 {
		limit = 10
	}

	queryVec := idx.embed(ctx, []string{query.OriginalText})[0]
	if vector.IsDegenerate(queryVec, degenerateEpsilon) {
		idx.logger.Debug("degenerate query vector, using keyword search")
		return idx.keywordSearch(ctx, query, limit)
	}

	hits, err := idx.vectors.Search(ctx, queryVec, limit)
	if err != nil {
		idx.logger.Warn("vector search failed, using keyword search", zap.Error(err))
		return idx.keywordSearch(ctx, query, limit)
	}

	results := make([]models.RetrievedFragment, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < idx.opts.SimilarityThreshold {
			continue
		}
		f, err := idx.store.GetFragment(ctx, hit.ID)
		if err != nil {
			idx.logger.Warn("indexed fragment missing from store",
				zap.String("fragment_id", hit.ID), zap.Error(err))
			continue
		}
		results = append(results, models.RetrievedFragment{
			ID:         f.ID,
			DocumentID: f.DocumentID,
			Content:    f.Content,
			Similarity: hit.Similarity,
			Metadata:   f.Metadata,
			Section:    f.Section(),
		})
	}
	if len(results) == 0 {
		idx.logger.Debug("vector search found nothing above threshold, using keyword search")
		return idx.keywordSearch(ctx, query, limit)
	}
	return results
}

// Remove deletes every fragment owned by documentID. Removing zero fragments
// is not an error.
func (idx *Index) Remove(ctx context.Context, documentID string) error {
	ids, err := idx.store.DeleteByDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := idx.vectors.Remove(ctx, ids); err != nil {
		return err
	}
	idx.logger.Info("removed document fragments",
		zap.String("document_id", documentID), zap.Int("count", len(ids)))
	return nil
}

// Stats returns fragment count and health status.
func (idx *Index) Stats(ctx context.Context) Stats {
	n, err := idx.store.Count(ctx)
	if err != nil {
		idx.logger.Error("failed to count fragments", zap.Error(err))
		return Stats{Status: "error"}
	}
	return Stats{Count: n, Status: "healthy"}
}

// embed produces one vector per text, falling back per batch to
// deterministic hash-seeded embeddings when the AI call fails or returns
// vectors of the wrong length. The fallback guarantees the same text always
// maps to the same vector.
func (idx *Index) embed(ctx context.Context, texts []string) [][]float32 {
	embeddings, err := idx.client.GenerateEmbeddings(ctx, texts)
	if err == nil && len(embeddings) == len(texts) {
		valid := true
		for _, e := range embeddings {
			if len(e) != idx.opts.Dimensions {
				valid = false
				break
			}
		}
		if valid {
			return embeddings
		}
		idx.logger.Warn("embedding dimension mismatch, using deterministic fallback",
			zap.Int("expected", idx.opts.Dimensions))
	} else if err != nil {
		idx.logger.Warn("embedding call failed, using deterministic fallback", zap.Error(err))
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = llm.DeterministicEmbedding(t, idx.opts.Dimensions)
	}
	return out
}
