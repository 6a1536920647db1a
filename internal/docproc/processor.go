package docproc

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/models"
)

// Processor turns documents into indexed fragments.
type Processor struct {
	chunker *Chunker
	index   *index.Index
	logger  *zap.Logger
}

// IngestResult summarizes one ingestion.
type IngestResult struct {
	DocumentID     string `json:"document_id"`
	Filename       string `json:"filename,omitempty"`
	FragmentsAdded int    `json:"chunks_created"`
	ElapsedMS      int64  `json:"processing_time_ms"`
}

// NewProcessor creates a processor feeding idx.
func NewProcessor(chunker *Chunker, idx *index.Index, logger *zap.Logger) *Processor {
	return &Processor{chunker: chunker, index: idx, logger: logger}
}

// IngestFile extracts, chunks, and indexes the file at path.
func (p *Processor) IngestFile(ctx context.Context, path string, metadata map[string]interface{}) (*IngestResult, error) {
	text, err := ExtractFile(path)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	if _, ok := metadata[models.MetaSource]; !ok {
		metadata[models.MetaSource] = filepath.Base(path)
	}
	result, err := p.IngestText(ctx, text, metadata)
	if err != nil {
		return nil, err
	}
	result.Filename = filepath.Base(path)
	return result, nil
}

// IngestText chunks and indexes raw text as a new document.
func (p *Processor) IngestText(ctx context.Context, text string, metadata map[string]interface{}) (*IngestResult, error) {
	start := time.Now()
	documentID := uuid.New().String()

	fragments := p.chunker.Chunk(documentID, text, metadata)
	if len(fragments) == 0 {
		return nil, fmt.Errorf("document has no extractable text")
	}
	if !p.index.Insert(ctx, fragments) {
		return nil, fmt.Errorf("failed to index document %s", documentID)
	}

	p.logger.Info("ingested document",
		zap.String("document_id", documentID),
		zap.Int("fragments", len(fragments)))

	return &IngestResult{
		DocumentID:     documentID,
		FragmentsAdded: len(fragments),
		ElapsedMS:      time.Since(start).Milliseconds(),
	}, nil
}

// Remove deletes a previously ingested document from the index.
func (p *Processor) Remove(ctx context.Context, documentID string) error {
	return p.index.Remove(ctx, documentID)
}
