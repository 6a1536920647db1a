package docproc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claimsight/claimsight/internal/models"
)

// Chunker splits extracted text into overlapping word-window fragments.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap, in words.
// An overlap >= size degrades to a step of one word.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits text into ContentFragments owned by documentID. The supplied
// metadata is copied into every fragment along with the chunk index.
func (c *Chunker) Chunk(documentID, text string, metadata map[string]interface{}) []*models.ContentFragment {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}

	var fragments []*models.ContentFragment
	chunkIndex := 0
	for i := 0; i < len(words); i += step {
		end := i + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		meta := map[string]interface{}{
			models.MetaDocumentID: documentID,
			"chunk_index":         chunkIndex,
		}
		for k, v := range metadata {
			meta[k] = v
		}
		fragments = append(fragments, &models.ContentFragment{
			ID:         fmt.Sprintf("%s_%s", documentID, uuid.New().String()[:8]),
			DocumentID: documentID,
			Content:    strings.Join(words[i:end], " "),
			Metadata:   meta,
		})
		chunkIndex++
		if end >= len(words) {
			break
		}
	}
	return fragments
}
