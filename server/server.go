// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/kg"
	"github.com/poiesic/hypograph/pipeline"
	"github.com/poiesic/hypograph/retriever"
	"github.com/poiesic/hypograph/storage"
)

// Deps are the backends the HTTP layer exposes. All fields are required.
type Deps struct {
	Assembler *pipeline.Assembler
	Retriever *retriever.Retriever
	Indexer   *retriever.Indexer
	Papers    storage.PaperRepository
	Graph     *kg.Client
}

// Server is the HTTP transport.
type Server struct {
	deps   Deps
	router *gin.Engine
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer builds the HTTP transport around the given backends.
func NewServer(deps Deps, opts ...Option) (*Server, error) {
	if deps.Assembler == nil || deps.Retriever == nil || deps.Indexer == nil ||
		deps.Papers == nil || deps.Graph == nil {
		return nil, ErrMissingDependency
	}

	s := &Server{
		deps:   deps,
		logger: slog.Default().With("component", "server"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s.router = router
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	hypothesis := s.router.Group("/api/hypothesis")
	{
		hypothesis.POST("/generate", s.handleGenerate)
		hypothesis.GET("/status", s.handleStatus)
	}

	ret := s.router.Group("/api/retriever")
	{
		ret.GET("/status", s.handleRetrieverStatus)
		ret.POST("/build-index", s.handleBuildIndex)
		ret.GET("/search", s.handleSearch)
	}

	graph := s.router.Group("/api/kg")
	{
		graph.GET("/query", s.handleKGQuery)
		graph.GET("/entities", s.handleKGEntities)
		graph.GET("/relations", s.handleKGRelations)
		graph.GET("/neighborhood/:entity", s.handleKGNeighborhood)
		graph.GET("/path/:entity1/:entity2", s.handleKGPath)
		graph.GET("/stats", s.handleKGStats)
		graph.GET("/health", s.handleKGHealth)
		graph.POST("/cypher", s.handleKGCypher)
	}
}

// Handler returns the underlying HTTP handler, used by tests and by Run.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on the given address until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.router.Run(addr)
}

// writeError maps sentinel errors to HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrForbiddenQuery):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
