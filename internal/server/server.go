// Package server exposes the pipeline's command/query interface over
// JSON HTTP for the surrounding application.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hclam/petcrawl/internal/scraper"
)

// Server wraps the orchestrator behind an HTTP mux
type Server struct {
	router *http.ServeMux
	orch   *scraper.Orchestrator
	http   *http.Server
}

// New creates a server for the given orchestrator
func New(addr string, orch *scraper.Orchestrator) *Server {
	s := &Server{
		router: http.NewServeMux(),
		orch:   orch,
	}
	s.router.HandleFunc("/api/scrape/batch", s.handleNextBatch)
	s.router.HandleFunc("/api/scrape/status", s.handleStatus)
	s.router.HandleFunc("/api/scrape/reset", s.handleReset)
	s.router.HandleFunc("/api/pets", s.handlePets)
	s.router.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	slog.Info("HTTP interface listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the mux, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}
