package decision

import (
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/models"
)

func TestParseDecisionJSON(t *testing.T) {
	t.Run("embedded object", func(t *testing.T) {
		response := "Sure, here is the decision:\n" +
			`{"decision": "rejected", "amount": null, "justification": "Waiting period not met.", "confidence": 0.85}` +
			"\nLet me know if you need more."
		result, err := parseDecisionJSON(response)
		if err != nil {
			t.Fatalf("parseDecisionJSON: %v", err)
		}
		if result.Outcome != models.OutcomeRejected {
			t.Errorf("outcome = %s", result.Outcome)
		}
		if result.Amount != nil {
			t.Errorf("amount = %v, want nil", *result.Amount)
		}
		if result.Justification != "Waiting period not met." {
			t.Errorf("justification = %q", result.Justification)
		}
	})

	t.Run("string amount with commas", func(t *testing.T) {
		result, err := parseDecisionJSON(`{"decision": "approved", "amount": "2,00,000", "justification": "ok", "confidence": 0.8}`)
		if err != nil {
			t.Fatalf("parseDecisionJSON: %v", err)
		}
		if result.Amount == nil || *result.Amount != 200000 {
			t.Errorf("amount = %v, want 200000", result.Amount)
		}
	})

	t.Run("unknown decision string becomes pending", func(t *testing.T) {
		result, err := parseDecisionJSON(`{"decision": "maybe", "justification": "x", "confidence": 0.4}`)
		if err != nil {
			t.Fatalf("parseDecisionJSON: %v", err)
		}
		if result.Outcome != models.OutcomePending {
			t.Errorf("outcome = %s, want pending", result.Outcome)
		}
	})

	t.Run("confidence clamped", func(t *testing.T) {
		result, err := parseDecisionJSON(`{"decision": "approved", "justification": "x", "confidence": 1.7}`)
		if err != nil {
			t.Fatalf("parseDecisionJSON: %v", err)
		}
		if result.Confidence != 1 {
			t.Errorf("confidence = %v, want 1", result.Confidence)
		}
	})

	t.Run("missing justification gets placeholder", func(t *testing.T) {
		result, err := parseDecisionJSON(`{"decision": "approved", "confidence": 0.9}`)
		if err != nil {
			t.Fatalf("parseDecisionJSON: %v", err)
		}
		if result.Justification != "No justification provided" {
			t.Errorf("justification = %q", result.Justification)
		}
	})

	t.Run("no JSON object", func(t *testing.T) {
		if _, err := parseDecisionJSON("the claim is approved"); err == nil {
			t.Error("expected error for response without JSON")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := parseDecisionJSON(`{"decision": approved}`); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestParseDecisionKeywords(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     models.Outcome
	}{
		{"approved", "The request is APPROVED per section 2.", models.OutcomeApproved},
		{"covered implies approved", "This procedure is covered by the policy.", models.OutcomeApproved},
		{"rejected", "The claim is rejected due to exclusions.", models.OutcomeRejected},
		{"denied", "The request is denied under the waiting period clause.", models.OutcomeRejected},
		{"partial", "Only a partial amount is payable.", models.OutcomePartial},
		{"no signal", "Further review is required by an adjuster.", models.OutcomePending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := parseDecisionKeywords(tc.response)
			if result.Outcome != tc.want {
				t.Errorf("outcome = %s, want %s", result.Outcome, tc.want)
			}
			if result.Confidence != 0.5 {
				t.Errorf("confidence = %v, want 0.5", result.Confidence)
			}
			if result.Justification != tc.response {
				t.Errorf("justification = %q, want the raw response", result.Justification)
			}
		})
	}
}

func TestParseDecisionKeywordsTruncates(t *testing.T) {
	long := strings.Repeat("approved ", 100)
	result := parseDecisionKeywords(long)
	if len(result.Justification) != 500 {
		t.Errorf("justification length = %d, want 500", len(result.Justification))
	}
	if strings.HasSuffix(result.Justification, "...") {
		t.Error("truncation must not append an ellipsis")
	}
}
