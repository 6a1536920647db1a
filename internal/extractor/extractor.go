// Package extractor converts free-text queries into structured queries with
// typed entities and an intent classification.
package extractor

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/llm"
	"github.com/claimsight/claimsight/internal/models"
)

// recognizerConfidence is assigned to every recognizer-derived entity.
const recognizerConfidence = 0.7

// Recognizer is an optional local named-entity model. Implementations return
// labeled spans over the original (non-lowercased) text.
type Recognizer interface {
	Recognize(text string) []RecognizedSpan
}

// RecognizedSpan is one hit from a Recognizer.
type RecognizedSpan struct {
	Label    string
	Text     string
	StartPos int
	EndPos   int
}

// recognizerLabels maps common NER labels onto the entity-type set. Labels
// without a mapping are dropped.
var recognizerLabels = map[string]models.EntityType{
	"PERSON": models.EntityPerson,
	"ORG":    models.EntityOrganization,
	"GPE":    models.EntityLocation,
	"LOC":    models.EntityLocation,
	"MONEY":  models.EntityAmount,
	"DATE":   models.EntityDate,
}

// Extractor parses natural-language queries. The pattern path always runs;
// the recognizer and AI classification paths are optional and degrade to
// local fallbacks. Extract never fails.
type Extractor struct {
	client     llm.Client
	recognizer Recognizer
	logger     *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizer attaches a local named-entity recognizer. Its entities are
// appended to the pattern-derived set, never replacing it.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) { e.recognizer = r }
}

// New creates an extractor using client for category/intent classification.
func New(client llm.Client, logger *zap.Logger, opts ...Option) *Extractor {
	e := &Extractor{client: client, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses text into a StructuredQuery. It never returns an error:
// classification failures fall back to the keyword classifier and the result
// is always well formed.
func (e *Extractor) Extract(ctx context.Context, text string) models.StructuredQuery {
	entities := extractPatternEntities(text)

	if e.recognizer != nil {
		entities = append(entities, e.recognizeEntities(text)...)
	}

	category, intent, confidence := e.classify(ctx, text)

	q := models.StructuredQuery{
		OriginalText: text,
		Category:     category,
		Entities:     entities,
		Intent:       intent,
		Confidence:   models.ClampConfidence(confidence),
	}
	e.logger.Debug("extracted query",
		zap.Int("entities", len(entities)),
		zap.String("category", string(category)),
		zap.String("intent", intent))
	return q
}

// extractPatternEntities runs the fixed pattern table over the lowercased
// text. Every match yields one entity at patternConfidence; overlapping
// matches across patterns are all kept.
func extractPatternEntities(text string) []models.ExtractedEntity {
	lower := strings.ToLower(text)
	var entities []models.ExtractedEntity
	for _, entityType := range patternOrder {
		for _, re := range entityPatterns[entityType] {
			for _, m := range re.FindAllStringSubmatchIndex(lower, -1) {
				start, end := m[0], m[1]
				value := lower[start:end]
				if len(m) >= 4 && m[2] >= 0 {
					value = lower[m[2]:m[3]]
				}
				entities = append(entities, models.ExtractedEntity{
					Type:       entityType,
					Value:      strings.TrimSpace(value),
					Confidence: patternConfidence,
					StartPos:   start,
					EndPos:     end,
				})
			}
		}
	}
	return entities
}

// recognizeEntities maps recognizer output onto the entity-type set at
// recognizerConfidence.
func (e *Extractor) recognizeEntities(text string) []models.ExtractedEntity {
	var entities []models.ExtractedEntity
	for _, span := range e.recognizer.Recognize(text) {
		entityType, ok := recognizerLabels[span.Label]
		if !ok {
			continue
		}
		entities = append(entities, models.ExtractedEntity{
			Type:       entityType,
			Value:      span.Text,
			Confidence: recognizerConfidence,
			StartPos:   span.StartPos,
			EndPos:     span.EndPos,
		})
	}
	return entities
}

// Healthy reports whether the extractor can serve requests. The pattern path
// is always available, so this is unconditionally true.
func (e *Extractor) Healthy() bool { return true }
