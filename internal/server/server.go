// Package server provides the HTTP API for claimsight.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/pipeline"
)

// Server is the HTTP transport boundary. It applies request timeouts; the
// pipeline itself enforces none.
type Server struct {
	pipeline  *pipeline.Pipeline
	processor *docproc.Processor
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// New creates a server with the given dependencies.
func New(p *pipeline.Pipeline, proc *docproc.Processor, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		pipeline:  p,
		processor: proc,
		config:    cfg,
		logger:    logger,
	}
}

// routes builds the router with the full middleware stack.
func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/process", s.handleProcess)
	r.Post("/api/v1/documents", s.handleIngest)
	r.Post("/api/v1/documents/upload", s.handleUpload)
	r.Delete("/api/v1/documents/{id}", s.handleDeleteDocument)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := s.routes()
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
