// Package decision synthesizes a decision with justification and confidence
// from a structured query and retrieved evidence.
package decision

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/models"
)

// noEvidenceJustification is returned when retrieval produced nothing to
// reason over.
const noEvidenceJustification = "No relevant clauses found to support the request"

// Synthesizer produces decisions. The primary path delegates reasoning to a
// generative AI call; when the call cannot be made the rule table decides,
// and when the call succeeds but its output cannot be parsed as JSON a
// keyword scan of the raw response decides.
type Synthesizer struct {
	client llm.Client
	logger *zap.Logger

	availOnce sync.Once
	avail     bool
}

// New creates a synthesizer using client for the primary reasoning path.
func New(client llm.Client, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{client: client, logger: logger}
}

// Decide produces a DecisionResult for query over fragments. It never fails:
// every failure mode degrades to a local fallback.
func (s *Synthesizer) Decide(ctx context.Context, query *models.StructuredQuery, fragments []models.RetrievedFragment) models.DecisionResult {
	if len(fragments) == 0 {
		return models.DecisionResult{
			Outcome:       models.OutcomeRejected,
			Justification: noEvidenceJustification,
			Confidence:    0.1,
		}
	}

	dc := buildContext(query, fragments)

	if !s.available(ctx) {
		s.logger.Warn("generation client unavailable, using rule-based decision")
		return decideByRules(dc)
	}
	response, err := s.client.GenerateText(ctx, decisionPrompt(dc), decisionSystemPrompt)
	if err != nil {
		s.logger.Warn("generation call failed, using rule-based decision", zap.Error(err))
		return decideByRules(dc)
	}

	result, err := parseDecisionJSON(response)
	if err != nil {
		s.logger.Warn("unparsable decision response, using keyword parse", zap.Error(err))
		return parseDecisionKeywords(response)
	}
	return result
}

// available reports whether the generation client can serve calls. Remote
// clients answer with a live request, so the result is probed once and
// cached for the synthesizer's lifetime; a client that later degrades is
// still handled by the GenerateText error path.
func (s *Synthesizer) available(ctx context.Context) bool {
	s.availOnce.Do(func() { s.avail = s.client.Available(ctx) })
	return s.avail
}

// Healthy reports whether the synthesizer can serve requests. The rule
// fallback is always available, so this is unconditionally true.
func (s *Synthesizer) Healthy() bool { return true }

// decisionContext is the structured evidence handed to the reasoning paths.
type decisionContext struct {
	OriginalText string
	Category     models.Category
	Intent       string
	Entities     map[models.EntityType][]string
	Fragments    []models.RetrievedFragment
}

func buildContext(query *models.StructuredQuery, fragments []models.RetrievedFragment) *decisionContext {
	return &decisionContext{
		OriginalText: query.OriginalText,
		Category:     query.Category,
		Intent:       query.Intent,
		Entities:     query.EntityValues(),
		Fragments:    fragments,
	}
}
