package decision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claimsight/claimsight/internal/models"
)

// rupeeAmount matches currency amounts like ₹2,00,000 in clause text.
var rupeeAmount = regexp.MustCompile(`₹([\d,]+)`)

// coverageProcedures are the procedure entity values that trigger the
// coverage scan for insurance claims.
var coverageProcedures = []string{"surgery", "knee", "hip"}

// decideByRules is the tertiary, entirely local fallback used when no
// generation call can be made.
func decideByRules(dc *decisionContext) models.DecisionResult {
	if len(dc.Fragments) == 0 {
		return models.DecisionResult{
			Outcome:       models.OutcomeRejected,
			Justification: "No relevant policy clauses found to support this request.",
			Confidence:    0.2,
		}
	}

	outcome := models.OutcomePending
	var amount *float64
	justification := "Based on available policy information: "
	confidence := 0.6

	switch dc.Category {
	case models.CategoryInsuranceClaim:
		coverageFound, exclusionFound := false, false
		procedures := dc.Entities[models.EntityProcedure]

		for _, f := range dc.Fragments {
			content := strings.ToLower(f.Content)

			if hasCoverageProcedure(procedures) &&
				(strings.Contains(content, "covered") || strings.Contains(content, "coverage")) {
				coverageFound = true
				if m := rupeeAmount.FindStringSubmatch(f.Content); m != nil {
					if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
						amount = &v
					}
				}
			}
			if strings.Contains(content, "excluded") || strings.Contains(content, "not covered") {
				exclusionFound = true
			}
		}

		switch {
		case coverageFound && !exclusionFound:
			outcome = models.OutcomeApproved
			justification += "Procedure appears to be covered under the policy terms."
			confidence = 0.7
		case exclusionFound:
			outcome = models.OutcomeRejected
			justification += "Procedure appears to be excluded from coverage."
			confidence = 0.7
		default:
			justification += "Coverage status unclear, requires manual review."
		}

	case models.CategoryHRPolicy:
		outcome = models.OutcomeApproved
		justification += fmt.Sprintf("Found relevant policy information in %d sections.", len(dc.Fragments))
		confidence = 0.6
	}

	justification += fmt.Sprintf(" Referenced %d relevant policy sections.", len(dc.Fragments))

	return models.DecisionResult{
		Outcome:       outcome,
		Amount:        amount,
		Justification: justification,
		Confidence:    confidence,
	}
}

// hasCoverageProcedure reports whether any extracted procedure value is one
// of the coverage-triggering procedures.
func hasCoverageProcedure(values []string) bool {
	for _, v := range values {
		for _, p := range coverageProcedures {
			if strings.EqualFold(v, p) {
				return true
			}
		}
	}
	return false
}
