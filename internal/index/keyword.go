package index

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/models"
)

// keywordScoreScale divides raw keyword scores when normalizing to a
// similarity: a raw score of 5 maps to similarity 1.0.
const keywordScoreScale = 5.0

// categoryKeywords adds retrieval terms per query category on top of entity
// values and query words.
var categoryKeywords = map[models.Category][]string{
	models.CategoryInsuranceClaim: {"surgery", "coverage", "covered", "procedure", "medical"},
	models.CategoryHRPolicy:       {"leave", "policy", "employee", "benefits"},
}

// keywordSearch scores every indexed fragment by keyword overlap with the
// query. Scores are coarser than cosine similarity, so the acceptance bar is
// deliberately lower than the vector threshold.
func (idx *Index) keywordSearch(ctx context.Context, query *models.StructuredQuery, limit int) []models.RetrievedFragment {
	fragments, err := idx.store.ListFragments(ctx)
	if err != nil {
		idx.logger.Error("keyword search failed to list fragments", zap.Error(err))
		return nil
	}
	if len(fragments) == 0 {
		return nil
	}

	keywords := buildKeywords(query)
	queryWords := longWords(query.OriginalText)

	type scored struct {
		fragment *models.ContentFragment
		score    float64
	}
	var matches []scored
	for _, f := range fragments {
		contentLower := strings.ToLower(f.Content)
		var score float64
		for _, k := range keywords {
			if strings.Contains(contentLower, k) {
				score++
			}
		}
		// Exact words from the original query weigh extra.
		for _, w := range queryWords {
			if strings.Contains(contentLower, w) {
				score += 0.5
			}
		}
		if score > 0 {
			matches = append(matches, scored{fragment: f, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.RetrievedFragment, 0, len(matches))
	for _, m := range matches {
		similarity := m.score / keywordScoreScale
		if similarity > 1 {
			similarity = 1
		}
		if similarity < idx.opts.KeywordThreshold {
			continue
		}
		results = append(results, models.RetrievedFragment{
			ID:         m.fragment.ID,
			DocumentID: m.fragment.DocumentID,
			Content:    m.fragment.Content,
			Similarity: similarity,
			Metadata:   m.fragment.Metadata,
			Section:    m.fragment.Section(),
		})
	}
	idx.logger.Debug("keyword search", zap.Int("keywords", len(keywords)), zap.Int("hits", len(results)))
	return results
}

// buildKeywords collects the deduplicated keyword set: entity values, query
// words longer than 2 characters, and category-specific terms. Order is
// preserved for determinism.
func buildKeywords(query *models.StructuredQuery) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(k string) {
		k = strings.ToLower(k)
		if k != "" && !seen[k] {
			seen[k] = true
			keywords = append(keywords, k)
		}
	}
	for _, e := range query.Entities {
		add(e.Value)
	}
	for _, w := range longWords(query.OriginalText) {
		add(w)
	}
	for _, k := range categoryKeywords[query.Category] {
		add(k)
	}
	return keywords
}

// longWords returns the lowercased whitespace-split words of text longer
// than 2 characters.
func longWords(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}
