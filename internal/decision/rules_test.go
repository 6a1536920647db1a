package decision

import (
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/models"
)

func ruleContext(category models.Category, procedures []string, fragments []models.RetrievedFragment) *decisionContext {
	entities := make(map[models.EntityType][]string)
	if len(procedures) > 0 {
		entities[models.EntityProcedure] = procedures
	}
	return &decisionContext{
		OriginalText: "test query",
		Category:     category,
		Entities:     entities,
		Fragments:    fragments,
	}
}

func TestDecideByRulesCoverage(t *testing.T) {
	fragments := []models.RetrievedFragment{
		{Content: "Knee surgery: Covered with a maximum benefit of ₹2,00,000 per claim.", Similarity: 0.8},
		{Content: "Hospitalization expenses are part of the plan.", Similarity: 0.4},
	}
	result := decideByRules(ruleContext(models.CategoryInsuranceClaim, []string{"surgery", "knee"}, fragments))

	if result.Outcome != models.OutcomeApproved {
		t.Errorf("outcome = %s, want approved", result.Outcome)
	}
	if result.Amount == nil || *result.Amount != 200000 {
		t.Errorf("amount = %v, want 200000", result.Amount)
	}
	if result.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", result.Confidence)
	}
	if !strings.HasSuffix(result.Justification, "Referenced 2 relevant policy sections.") {
		t.Errorf("justification = %q", result.Justification)
	}
}

func TestDecideByRulesExclusion(t *testing.T) {
	fragments := []models.RetrievedFragment{
		{Content: "Cosmetic procedures are excluded from coverage.", Similarity: 0.75},
	}
	result := decideByRules(ruleContext(models.CategoryInsuranceClaim, []string{"surgery"}, fragments))

	if result.Outcome != models.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", result.Outcome)
	}
	if result.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", result.Confidence)
	}
}

func TestDecideByRulesUnclearCoverage(t *testing.T) {
	fragments := []models.RetrievedFragment{
		{Content: "Premiums are due on the first of each month.", Similarity: 0.72},
	}
	result := decideByRules(ruleContext(models.CategoryInsuranceClaim, []string{"surgery"}, fragments))

	if result.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", result.Outcome)
	}
	if result.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", result.Confidence)
	}
	if !strings.Contains(result.Justification, "requires manual review") {
		t.Errorf("justification = %q", result.Justification)
	}
}

func TestDecideByRulesHRPolicy(t *testing.T) {
	fragments := []models.RetrievedFragment{
		{Content: "Employees receive 18 days of annual leave.", Similarity: 0.3},
		{Content: "Maternity leave is 26 weeks of paid leave.", Similarity: 0.25},
	}
	result := decideByRules(ruleContext(models.CategoryHRPolicy, nil, fragments))

	if result.Outcome != models.OutcomeApproved {
		t.Errorf("outcome = %s, want approved", result.Outcome)
	}
	if result.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", result.Confidence)
	}
	if !strings.Contains(result.Justification, "Found relevant policy information in 2 sections.") {
		t.Errorf("justification = %q", result.Justification)
	}
}

func TestDecideByRulesGeneralCategory(t *testing.T) {
	fragments := []models.RetrievedFragment{
		{Content: "Some unrelated text.", Similarity: 0.5},
	}
	result := decideByRules(ruleContext(models.CategoryGeneral, nil, fragments))

	if result.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", result.Outcome)
	}
	if result.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", result.Confidence)
	}
}

func TestDecideByRulesNoProcedureEntities(t *testing.T) {
	// Coverage text alone is not enough; a coverage-triggering procedure
	// entity must be present.
	fragments := []models.RetrievedFragment{
		{Content: "Knee surgery: Covered with a maximum benefit of ₹2,00,000.", Similarity: 0.8},
	}
	result := decideByRules(ruleContext(models.CategoryInsuranceClaim, nil, fragments))

	if result.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", result.Outcome)
	}
	if result.Amount != nil {
		t.Errorf("amount = %v, want nil", *result.Amount)
	}
}
