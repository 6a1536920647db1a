package models

import "strings"

// Category is the coarse classification of a query.
type Category string

const (
	CategoryInsuranceClaim  Category = "insurance_claim"
	CategoryLegalCompliance Category = "legal_compliance"
	CategoryContractReview  Category = "contract_review"
	CategoryHRPolicy        Category = "hr_policy"
	CategoryGeneral         Category = "general"
)

// ParseCategory maps a string to a Category. The short forms exposed by the
// CLI (insurance, legal, contract, hr) are accepted alongside the full
// tokens. Unknown values return CategoryGeneral and false.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insurance", string(CategoryInsuranceClaim):
		return CategoryInsuranceClaim, true
	case "legal", string(CategoryLegalCompliance):
		return CategoryLegalCompliance, true
	case "contract", string(CategoryContractReview):
		return CategoryContractReview, true
	case "hr", string(CategoryHRPolicy):
		return CategoryHRPolicy, true
	case string(CategoryGeneral):
		return CategoryGeneral, true
	}
	return CategoryGeneral, false
}

// StructuredQuery is the parsed form of a free-text request. It is created
// once per request and never mutated afterwards.
type StructuredQuery struct {
	OriginalText string            `json:"original_text"`
	Category     Category          `json:"category"`
	Entities     []ExtractedEntity `json:"entities"`
	Intent       string            `json:"intent"`
	Confidence   float64           `json:"confidence"`
}

// EntityValues groups entity values by type, preserving extraction order
// within each type.
func (q *StructuredQuery) EntityValues() map[EntityType][]string {
	out := make(map[EntityType][]string)
	for _, e := range q.Entities {
		out[e.Type] = append(out[e.Type], e.Value)
	}
	return out
}
