package extractor

import (
	"regexp"

	"github.com/claimsight/claimsight/internal/models"
)

// patternConfidence is assigned to every pattern-derived entity.
const patternConfidence = 0.8

// entityPatterns maps entity type to an ordered pattern list. Patterns run
// against the lowercased query text; every match of every pattern yields one
// entity, overlapping matches included. When a pattern has capture groups the
// first group is the entity value, otherwise the full match is used.
var entityPatterns = map[models.EntityType][]*regexp.Regexp{
	models.EntityAge: {
		regexp.MustCompile(`(\d{1,3})\s*(?:year|yr|y)s?(?:\s*old)?`),
		regexp.MustCompile(`(\d{1,3})\s*(?:m|f|male|female)`),
		regexp.MustCompile(`age\s*(?:of\s*)?(\d{1,3})`),
		regexp.MustCompile(`(\d{1,3})-year-old`),
		regexp.MustCompile(`(\d{1,3})m\b`),
		regexp.MustCompile(`(\d{1,3})f\b`),
	},
	models.EntityGender: {
		regexp.MustCompile(`\b(male|female|m|f|man|woman)\b`),
		regexp.MustCompile(`(\d+)m\b`),
		regexp.MustCompile(`(\d+)f\b`),
	},
	models.EntityProcedure: {
		regexp.MustCompile(`\b(surgery|operation|procedure|treatment)\b`),
		regexp.MustCompile(`\b(knee|hip|heart|brain|liver|kidney|dental|eye|spine)\s+(?:surgery|operation|procedure|treatment)`),
		regexp.MustCompile(`\b(knee|hip|heart|cardiac|orthopedic|dental)\s+(?:surgery|operation)`),
		regexp.MustCompile(`\b(chemotherapy|radiation|dialysis|physiotherapy)\b`),
		regexp.MustCompile(`\b(bypass|angioplasty|transplant|replacement)\b`),
	},
	models.EntityLocation: {
		regexp.MustCompile(`\bin\s+([a-z]+(?:\s+[a-z]+)*)`),
		regexp.MustCompile(`\bat\s+([a-z]+(?:\s+[a-z]+)*)`),
		regexp.MustCompile(`\b(mumbai|delhi|bangalore|chennai|pune|hyderabad|kolkata|ahmedabad)\b`),
		regexp.MustCompile(`\b([a-z]+)\s+(?:city|hospital|clinic)\b`),
	},
	models.EntityPolicyDuration: {
		regexp.MustCompile(`(\d+)\s*(?:month|yr|year)s?\s*(?:old\s*)?policy`),
		regexp.MustCompile(`policy\s*(?:of\s*)?(\d+)\s*(?:month|yr|year)s?`),
		regexp.MustCompile(`(\d+)-(?:month|year)s?\s*(?:old\s*)?policy`),
		regexp.MustCompile(`(\d+)\s*(?:month|yr|year)s?\s*insurance`),
	},
	models.EntityAmount: {
		regexp.MustCompile(`(?:₹|rs\.?|inr)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:₹|rs\.?|inr|rupees)`),
		regexp.MustCompile(`(?:amount|cost|price|fee)\s*(?:of\s*)?(?:₹|rs\.?|inr)?\s*(\d+(?:,\d{3})*)`),
		regexp.MustCompile(`(\d+)\s*(?:lakh|crore)`),
	},
}

// patternOrder fixes the iteration order over entityPatterns so extraction is
// deterministic across runs.
var patternOrder = []models.EntityType{
	models.EntityAge,
	models.EntityGender,
	models.EntityProcedure,
	models.EntityLocation,
	models.EntityPolicyDuration,
	models.EntityAmount,
}
