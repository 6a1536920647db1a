package docproc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/models"
)

// sampleSections is a small built-in policy corpus for demos and smoke tests.
var sampleSections = []struct {
	content string
	section string
	docType string
}{
	{
		content: "SECTION 3: COVERED PROCEDURES - Orthopedic surgeries including knee surgery, hip replacement, and spine surgery are covered under this policy. Coverage amount: Up to ₹2,00,000 per procedure.",
		section: "COVERED_PROCEDURES",
		docType: "insurance_policy",
	},
	{
		content: "SECTION 2: ELIGIBILITY - Age Requirements: Primary insured 18-65 years at policy inception. Waiting Periods: 12 months waiting period for knee surgery and hip replacement.",
		section: "ELIGIBILITY",
		docType: "insurance_policy",
	},
	{
		content: "SECTION 4: GEOGRAPHICAL COVERAGE - Metropolitan cities (Mumbai, Delhi, Bangalore, Chennai, Pune, Hyderabad): Full coverage. Coverage available at all network hospitals across India.",
		section: "GEOGRAPHICAL_COVERAGE",
		docType: "insurance_policy",
	},
	{
		content: "SECTION 1.2: LEAVE POLICIES - Maternity leave: 26 weeks paid leave as per government regulations. Sick leave: 12 days per year with medical certificate required for 3+ consecutive days.",
		section: "LEAVE_POLICIES",
		docType: "hr_policy",
	},
	{
		content: "SECTION 2.1: SALARY STRUCTURE - Performance bonus: Up to 20% of annual salary for exceptional performance. Annual salary review in April based on performance.",
		section: "SALARY_STRUCTURE",
		docType: "hr_policy",
	},
}

// SampleFragments builds the built-in corpus as fragments under one fresh
// document ID.
func SampleFragments() []*models.ContentFragment {
	documentID := uuid.New().String()
	fragments := make([]*models.ContentFragment, 0, len(sampleSections))
	for i, s := range sampleSections {
		fragments = append(fragments, &models.ContentFragment{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    s.content,
			Metadata: map[string]interface{}{
				models.MetaDocumentID: documentID,
				models.MetaSection:    s.section,
				models.MetaSource:     "system_generated",
				"document_type":       s.docType,
				"chunk_index":         i,
			},
		})
	}
	return fragments
}

// Seed loads the sample corpus into idx.
func Seed(ctx context.Context, idx *index.Index) (int, error) {
	fragments := SampleFragments()
	if !idx.Insert(ctx, fragments) {
		return 0, fmt.Errorf("failed to seed sample corpus")
	}
	return len(fragments), nil
}
