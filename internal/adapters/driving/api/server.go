// Package api exposes the analysis, metrics, and search operations
// over HTTP for the web frontend.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// Server is the HTTP API.
type Server struct {
	engine    *gin.Engine
	analysis  driving.AnalysisService
	metrics   driving.MetricsService
	retrieval driving.RetrievalService
	ingest    driving.IngestService
}

// NewServer creates the API server and registers its routes.
func NewServer(analysis driving.AnalysisService, metrics driving.MetricsService, retrieval driving.RetrievalService, ingest driving.IngestService) *Server {
	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:    gin.New(),
		analysis:  analysis,
		metrics:   metrics,
		retrieval: retrieval,
		ingest:    ingest,
	}

	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	apiGroup := s.engine.Group("/api")
	{
		apiGroup.GET("/health", s.handleHealth)
		apiGroup.GET("/search", s.handleSearch)
		apiGroup.POST("/query", s.handleQuery)
		apiGroup.POST("/compare", s.handleCompare)
		apiGroup.GET("/insights/:issuerId", s.handleInsights)
		apiGroup.POST("/metrics/extract", s.handleExtract)
		apiGroup.GET("/metrics/:issuerId", s.handleGetMetrics)
		apiGroup.POST("/ingest", s.handleIngest)
	}
}

// Handler returns the HTTP handler, used by tests and by callers that
// manage their own listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens and serves on addr until the process exits.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// respondError maps domain errors to HTTP status codes. ErrNoEvidence
// is 503: the condition clears once ingestion has run.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoEvidence):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMalformedAIOutput):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
