package models

import "time"

// Outcome is the enumerated decision result.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	OutcomePending  Outcome = "pending"
	OutcomePartial  Outcome = "partial"
)

// ParseOutcome maps a string to an Outcome. Unrecognized values return
// OutcomePending and false.
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomeApproved, OutcomeRejected, OutcomePending, OutcomePartial:
		return Outcome(s), true
	}
	return OutcomePending, false
}

// DecisionResult is the synthesized decision for one query.
type DecisionResult struct {
	Outcome       Outcome  `json:"decision"`
	Amount        *float64 `json:"amount"`
	Justification string   `json:"justification"`
	Confidence    float64  `json:"confidence"`
}

// PipelineResult is the complete per-request output of the pipeline.
// Callers always receive a populated result; confidence 0.0 with an
// error-bearing justification signals total failure.
type PipelineResult struct {
	Decision  DecisionResult      `json:"decision_result"`
	Query     StructuredQuery     `json:"query_analysis"`
	Fragments []RetrievedFragment `json:"fragments_used"`
	Elapsed   time.Duration       `json:"-"`
	ElapsedMS int64               `json:"processing_time_ms"`
}
