// Package pipeline sequences extraction, retrieval, and decision synthesis
// for one query.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/decision"
	"github.com/claimsight/claimsight/internal/extractor"
	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/models"
)

// Pipeline runs the linear parse → retrieve → decide flow. Components
// communicate via immutable value objects; none mutates another's state.
// Concurrent requests may run simultaneously, sharing only the index's
// backing store.
type Pipeline struct {
	extractor   *extractor.Extractor
	index       *index.Index
	synthesizer *decision.Synthesizer
	maxResults  int
	logger      *zap.Logger
}

// New creates a pipeline. maxResults bounds retrieval per query
// (non-positive means 10).
func New(ex *extractor.Extractor, idx *index.Index, syn *decision.Synthesizer, maxResults int, logger *zap.Logger) *Pipeline {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Pipeline{
		extractor:   ex,
		index:       idx,
		synthesizer: syn,
		maxResults:  maxResults,
		logger:      logger,
	}
}

// Status aggregates component health for external health checks.
type Status struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	IndexStats index.Stats       `json:"index_stats"`
}

// Process runs the full pipeline for text. categoryHint is reported back in
// the degraded result when extraction never ran; the extractor's own
// classification otherwise wins. Process never returns an error: any failure
// inside the sequence yields a degraded-but-well-formed result.
func (p *Pipeline) Process(ctx context.Context, text string, categoryHint models.Category) (result models.PipelineResult) {
	start := time.Now()
	if categoryHint == "" {
		categoryHint = models.CategoryGeneral
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", zap.Any("panic", r))
			result = p.degradedResult(text, categoryHint, fmt.Errorf("%v", r), time.Since(start))
		}
	}()

	query := p.extractor.Extract(ctx, text)
	fragments := p.index.Search(ctx, &query, p.maxResults)
	decided := p.synthesizer.Decide(ctx, &query, fragments)

	elapsed := time.Since(start)
	p.logger.Info("processed query",
		zap.String("outcome", string(decided.Outcome)),
		zap.Int("fragments", len(fragments)),
		zap.Duration("elapsed", elapsed))

	return models.PipelineResult{
		Decision:  decided,
		Query:     query,
		Fragments: fragments,
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

// degradedResult is the uniform answer for pipeline-fatal failures: pending,
// confidence zero, and a justification carrying the error description.
func (p *Pipeline) degradedResult(text string, categoryHint models.Category, err error, elapsed time.Duration) models.PipelineResult {
	return models.PipelineResult{
		Decision: models.DecisionResult{
			Outcome:       models.OutcomePending,
			Justification: fmt.Sprintf("Error processing query: %v", err),
			Confidence:    0.0,
		},
		Query: models.StructuredQuery{
			OriginalText: text,
			Category:     categoryHint,
			Entities:     []models.ExtractedEntity{},
			Intent:       "error processing query",
			Confidence:   0.0,
		},
		Fragments: []models.RetrievedFragment{},
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

// StatusReport aggregates each component's self-reported health plus the
// index's fragment count.
func (p *Pipeline) StatusReport(ctx context.Context) Status {
	stats := p.index.Stats(ctx)

	components := map[string]string{
		"extractor":   healthString(p.extractor.Healthy()),
		"index":       stats.Status,
		"synthesizer": healthString(p.synthesizer.Healthy()),
	}
	overall := "healthy"
	for _, v := range components {
		if v != "healthy" {
			overall = "degraded"
			break
		}
	}
	return Status{Status: overall, Components: components, IndexStats: stats}
}

func healthString(ok bool) string {
	if ok {
		return "healthy"
	}
	return "error"
}
