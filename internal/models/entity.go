// Package models defines core data structures for queries, fragments, and decisions.
package models

// EntityType classifies an extracted entity.
type EntityType string

const (
	EntityAge            EntityType = "age"
	EntityGender         EntityType = "gender"
	EntityProcedure      EntityType = "procedure"
	EntityLocation       EntityType = "location"
	EntityPolicyDuration EntityType = "policy_duration"
	EntityAmount         EntityType = "amount"
	EntityDate           EntityType = "date"
	EntityPerson         EntityType = "person"
	EntityOrganization   EntityType = "organization"
)

// ExtractedEntity is a single typed entity found in query text.
// Entities are immutable once produced; overlapping matches are all kept.
type ExtractedEntity struct {
	Type       EntityType `json:"entity_type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	// StartPos and EndPos are byte offsets into the analyzed query text.
	// Offset 0 is a legal start position, so the fields always serialize.
	StartPos int `json:"start_pos"`
	EndPos   int `json:"end_pos"`
}

// ClampConfidence returns v limited to the [0,1] range.
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
