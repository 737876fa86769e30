// Package server provides the HTTP API for the oracle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cfle/mtg-oracle/internal/config"
	"github.com/cfle/mtg-oracle/internal/dataset"
	"github.com/cfle/mtg-oracle/internal/search"
	"github.com/cfle/mtg-oracle/internal/storage"
	"github.com/cfle/mtg-oracle/internal/suggest"
)

// Server is the HTTP server for the oracle API.
type Server struct {
	engine  *search.Engine
	source  *dataset.Source
	suggest *suggest.Index          // optional
	cache   storage.ResolutionCache // optional, status reporting only
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. suggestIdx and cache
// may be nil; the corresponding endpoints degrade gracefully.
func NewServer(
	engine *search.Engine,
	source *dataset.Source,
	suggestIdx *suggest.Index,
	cache storage.ResolutionCache,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		engine:  engine,
		source:  source,
		suggest: suggestIdx,
		cache:   cache,
		config:  cfg,
		logger:  logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/cards/{id}", s.handleGetCard)
	r.Get("/api/v1/suggest", s.handleSuggest)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
