package decision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/claimsight/claimsight/internal/models"
)

// maxRawJustification bounds the justification taken from an unparsable
// response.
const maxRawJustification = 500

// decisionPayload mirrors the JSON object the prompt asks for. Amount is
// kept loose because models return numbers, numeric strings, or null.
type decisionPayload struct {
	Decision      string      `json:"decision"`
	Amount        interface{} `json:"amount"`
	Justification string      `json:"justification"`
	Confidence    float64     `json:"confidence"`
}

// parseDecisionJSON locates the first {...} span in response and decodes it.
// Unrecognized decision strings fall back to pending; the amount is coerced
// to a number or dropped; confidence is clamped to [0,1].
func parseDecisionJSON(response string) (models.DecisionResult, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return models.DecisionResult{}, fmt.Errorf("no JSON object in response")
	}

	var payload decisionPayload
	if err := json.Unmarshal([]byte(response[start:end+1]), &payload); err != nil {
		return models.DecisionResult{}, fmt.Errorf("malformed decision JSON: %w", err)
	}

	outcome, _ := models.ParseOutcome(strings.ToLower(payload.Decision))

	justification := payload.Justification
	if justification == "" {
		justification = "No justification provided"
	}

	return models.DecisionResult{
		Outcome:       outcome,
		Amount:        coerceAmount(payload.Amount),
		Justification: justification,
		Confidence:    models.ClampConfidence(payload.Confidence),
	}, nil
}

// parseDecisionKeywords is the secondary parser: it scans the raw response
// for decision keyword families and keeps a truncated response as the
// justification.
func parseDecisionKeywords(response string) models.DecisionResult {
	lower := strings.ToLower(response)
	var outcome models.Outcome
	switch {
	case containsAny(lower, "approved", "accept", "covered", "eligible"):
		outcome = models.OutcomeApproved
	case containsAny(lower, "rejected", "denied", "not covered", "excluded"):
		outcome = models.OutcomeRejected
	case containsAny(lower, "partial", "partially"):
		outcome = models.OutcomePartial
	default:
		outcome = models.OutcomePending
	}
	justification := response
	if len(justification) > maxRawJustification {
		justification = justification[:maxRawJustification]
	}
	return models.DecisionResult{
		Outcome:       outcome,
		Justification: justification,
		Confidence:    0.5,
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// coerceAmount converts the loose JSON amount to a float pointer, dropping
// anything non-numeric.
func coerceAmount(raw interface{}) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
			return &f
		}
	}
	return nil
}
