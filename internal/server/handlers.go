package server

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/models"
)

const maxUploadSize = 50 << 20 // 50 MB

type processRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
}

type ingestRequest struct {
	Content  string                 `json:"content"`
	Filename string                 `json:"filename,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// handleProcess runs one query through the pipeline. It always answers 200
// with a well-formed result; pipeline failures surface as a degraded decision
// rather than an HTTP error.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	hint := models.CategoryGeneral
	if req.Category != "" {
		parsed, ok := models.ParseCategory(req.Category)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown category: "+req.Category)
			return
		}
		hint = parsed
	}

	result := s.pipeline.Process(r.Context(), req.Query, hint)
	respondJSON(w, http.StatusOK, result)
}

// handleIngest indexes raw text posted as JSON.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	if req.Filename != "" {
		metadata[models.MetaSource] = req.Filename
	}

	result, err := s.processor.IngestText(r.Context(), req.Content, metadata)
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result.Filename = req.Filename
	respondJSON(w, http.StatusCreated, result)
}

// handleUpload indexes an uploaded document. Text is extracted according to
// the file extension before chunking.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	text, err := docproc.ExtractBytes(content, ext)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	metadata := map[string]interface{}{
		models.MetaSource: header.Filename,
	}
	result, err := s.processor.IngestText(r.Context(), text, metadata)
	if err != nil {
		s.logger.Error("upload ingest failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result.Filename = header.Filename
	respondJSON(w, http.StatusCreated, result)
}

// handleDeleteDocument removes all fragments of a document. Deleting an
// unknown document succeeds; removal is idempotent.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		respondError(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := s.processor.Remove(r.Context(), documentID); err != nil {
		s.logger.Error("delete failed", zap.String("document_id", documentID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"document_id": documentID,
		"status":      "deleted",
	})
}

// handleStatus reports component health and index statistics.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.pipeline.StatusReport(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written, nothing else to do.
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
