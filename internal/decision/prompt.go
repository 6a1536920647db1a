package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

const decisionSystemPrompt = "You are an expert decision-making AI for document analysis. " +
	"Analyze the provided context and make accurate decisions based on the relevant clauses."

// decisionPrompt renders the evidence context into a prompt asking for a
// strict JSON decision object.
func decisionPrompt(dc *decisionContext) string {
	entitiesJSON, err := json.MarshalIndent(dc.Entities, "", "  ")
	if err != nil {
		entitiesJSON = []byte("{}")
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Analyze the following query and relevant document clauses to make a decision.

QUERY INFORMATION:
- Original Query: %q
- Query Type: %s
- Intent: %s
- Extracted Entities: %s

RELEVANT CLAUSES:
`, dc.OriginalText, dc.Category, dc.Intent, entitiesJSON)

	for i, f := range dc.Fragments {
		section := f.Section
		if section == "" {
			section = "Unknown"
		}
		fmt.Fprintf(&b, `
Clause %d (Similarity: %.2f):
Section: %s
Content: %s
---
`, i+1, f.Similarity, section, f.Content)
	}

	b.WriteString(`
DECISION REQUIREMENTS:
Based on the query and relevant clauses, provide your decision in the following JSON format:

{
    "decision": "approved|rejected|pending|partial",
    "amount": null or numeric value,
    "justification": "Detailed explanation of the decision",
    "confidence": 0.0-1.0,
    "reasoning": "Step-by-step reasoning process",
    "applicable_clauses": ["clause_id1", "clause_id2"]
}

DECISION GUIDELINES:
1. "approved": All requirements are met according to the clauses
2. "rejected": Requirements are not met or explicitly excluded
3. "pending": Insufficient information or requires additional verification
4. "partial": Some requirements are met, but not all

For insurance claims:
- Check coverage eligibility based on policy terms
- Verify procedure/treatment is covered
- Consider waiting periods, exclusions, and limits
- Calculate coverage amount if applicable

For legal/compliance queries:
- Check if the scenario complies with stated rules
- Identify any violations or requirements
- Provide clear compliance status

Provide your response as valid JSON only:`)

	return b.String()
}
