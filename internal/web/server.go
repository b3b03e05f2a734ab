// Package web wires the HTTP API: photo upload and analysis jobs, session
// state, selection operations, similarity lookup and export.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/photo-declutter/internal/ai"
	"github.com/kozaktomas/photo-declutter/internal/originals"
	"github.com/kozaktomas/photo-declutter/internal/pipeline"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
	"github.com/kozaktomas/photo-declutter/internal/web/handlers"
	"github.com/kozaktomas/photo-declutter/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	jobManager *handlers.JobManager
	originals  *originals.Store
}

// Deps bundles the components the server exposes over HTTP.
type Deps struct {
	Store     *store.Store
	Analyzer  *pipeline.Analyzer
	Index     *similarity.Index
	Originals *originals.Store
	Captioner ai.Captioner // optional
}

// NewServer creates a new web server.
func NewServer(deps Deps, host string, port int) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		jobManager: handlers.NewJobManager(),
		originals:  deps.Originals,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes(deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and removes spooled originals.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if s.originals != nil {
		if err := s.originals.Remove(); err != nil {
			log.Printf("failed to clean up originals: %v", err)
		}
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
