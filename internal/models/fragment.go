package models

// Recognized metadata keys the core relies on. All other keys are opaque
// passthrough.
const (
	MetaDocumentID = "document_id"
	MetaSection    = "section"
	MetaSource     = "source"
)

// ContentFragment is the retrieval unit: a bounded span of a source
// document's text plus open metadata. Fragments are immutable after
// insertion into the index; updates are delete+reinsert.
type ContentFragment struct {
	ID         string                 `json:"fragment_id"`
	DocumentID string                 `json:"document_id"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Vector     []float32              `json:"-"`
}

// Section returns the section metadata value, or "" when absent.
func (f *ContentFragment) Section() string {
	if f.Metadata == nil {
		return ""
	}
	if s, ok := f.Metadata[MetaSection].(string); ok {
		return s
	}
	return ""
}

// RetrievedFragment is a per-query search hit, ranked by Similarity
// descending with ties broken by insertion order.
type RetrievedFragment struct {
	ID         string                 `json:"fragment_id"`
	DocumentID string                 `json:"document_id"`
	Content    string                 `json:"content"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Section    string                 `json:"section,omitempty"`
}
