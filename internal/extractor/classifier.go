package extractor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/models"
)

const classifyPromptFormat = `Analyze the following query and determine:
1. Query type (insurance_claim, legal_compliance, contract_review, hr_policy, or general)
2. Intent (what the user wants to know)
3. Confidence score (0.0 to 1.0)

Query: %q

Respond in this exact format:
Type: [query_type]
Intent: [brief description of what user wants]
Confidence: [0.0-1.0]`

// Fixed keyword sets scored by the fallback classifier.
var (
	insuranceKeywords = []string{
		"surgery", "claim", "coverage", "policy", "insurance", "medical",
		"treatment", "hospital", "procedure", "knee", "hip", "heart",
	}
	hrKeywords = []string{
		"leave", "maternity", "paternity", "salary", "employee", "working hours",
		"notice period", "resignation", "bonus", "benefits", "vacation",
	}
	legalKeywords = []string{
		"contract", "legal", "compliance", "regulation", "law", "agreement",
		"terms", "conditions", "violation", "breach",
	}
)

// classify determines category, intent, and confidence. The AI path is tried
// first; any failure (call error, unparsable response, invalid category
// token) routes to the deterministic keyword classifier.
func (e *Extractor) classify(ctx context.Context, text string) (models.Category, string, float64) {
	category, intent, confidence, err := e.classifyAI(ctx, text)
	if err != nil {
		e.logger.Warn("AI classification failed, using keyword fallback", zap.Error(err))
		return classifyKeywords(text)
	}
	return category, intent, confidence
}

// classifyAI asks the generation client for a three-line classification and
// parses it by line prefix.
func (e *Extractor) classifyAI(ctx context.Context, text string) (models.Category, string, float64, error) {
	response, err := e.client.GenerateText(ctx, fmt.Sprintf(classifyPromptFormat, text), "")
	if err != nil {
		return models.CategoryGeneral, "", 0, err
	}

	var (
		category   models.Category
		intent     = "General query"
		confidence = 0.5
		typeFound  bool
	)
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Type:"):
			token := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "Type:")))
			parsed, ok := models.ParseCategory(token)
			if !ok {
				return models.CategoryGeneral, "", 0, fmt.Errorf("invalid category token %q", token)
			}
			category = parsed
			typeFound = true
		case strings.HasPrefix(line, "Intent:"):
			intent = strings.TrimSpace(strings.TrimPrefix(line, "Intent:"))
		case strings.HasPrefix(line, "Confidence:"):
			if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "Confidence:")), 64); err == nil {
				confidence = v
			}
		}
	}
	if !typeFound {
		return models.CategoryGeneral, "", 0, fmt.Errorf("no Type line in classification response")
	}
	return category, intent, models.ClampConfidence(confidence), nil
}

// classifyKeywords scores the three fixed keyword sets over the lowercased
// text. A zero max score yields general at 0.3; otherwise confidence is
// min(0.8, 0.4 + 0.1*score). Ties at the max resolve in insurance, HR, legal
// scan order.
func classifyKeywords(text string) (models.Category, string, float64) {
	lower := strings.ToLower(text)
	count := func(keywords []string) int {
		n := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				n++
			}
		}
		return n
	}

	insuranceScore := count(insuranceKeywords)
	hrScore := count(hrKeywords)
	legalScore := count(legalKeywords)

	maxScore := insuranceScore
	if hrScore > maxScore {
		maxScore = hrScore
	}
	if legalScore > maxScore {
		maxScore = legalScore
	}
	if maxScore == 0 {
		return models.CategoryGeneral, "General information request", 0.3
	}

	confidence := 0.4 + 0.1*float64(maxScore)
	if confidence > 0.8 {
		confidence = 0.8
	}

	switch maxScore {
	case insuranceScore:
		return models.CategoryInsuranceClaim, "Insurance claim or coverage inquiry", confidence
	case hrScore:
		return models.CategoryHRPolicy, "HR policy or employee benefits inquiry", confidence
	default:
		return models.CategoryLegalCompliance, "Legal compliance or contract inquiry", confidence
	}
}
