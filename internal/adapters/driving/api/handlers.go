package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	Query        string   `json:"query"`
	IssuerIDs    []string `json:"issuerIds"`
	AnalysisType string   `json:"analysisType"`
}

// compareRequest is the body of POST /api/compare.
type compareRequest struct {
	IssuerIDs []string `json:"issuerIds"`
}

// extractRequest is the body of POST /api/metrics/extract.
type extractRequest struct {
	IssuerID   string `json:"issuerId"`
	IssuerName string `json:"issuerName"`
}

// ingestRequest is the body of POST /api/ingest, the same shape as the
// CLI manifest.
type ingestRequest struct {
	IssuerID   string `json:"issuerId"`
	IssuerName string `json:"issuerName"`
	Documents  []struct {
		Title string `json:"title"`
		Type  string `json:"type"`
		Date  string `json:"date"`
		URL   string `json:"url"`
	} `json:"documents"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	issuerID := c.Query("issuerId")
	topK, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "q parameter is required"})
		return
	}

	results, err := s.retrieval.Search(c.Request.Context(), query, issuerID, topK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := s.analysis.Answer(c.Request.Context(), req.Query, req.IssuerIDs, req.AnalysisType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	comparisons, err := s.analysis.CompareIssuers(c.Request.Context(), req.IssuerIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"comparisons": comparisons,
	})
}

func (s *Server) handleInsights(c *gin.Context) {
	result, err := s.analysis.Insights(c.Request.Context(), c.Param("issuerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	record, err := s.metrics.Extract(c.Request.Context(), req.IssuerID, req.IssuerName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"metrics": record,
	})
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	docs := make([]domain.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = domain.Document{
			IssuerID: req.IssuerID,
			Title:    d.Title,
			Type:     domain.ClassifyDocument(d.Type, d.Title),
			Date:     d.Date,
			URL:      d.URL,
		}
	}

	stats, err := s.ingest.ProcessIssuerDocuments(c.Request.Context(), req.IssuerID, req.IssuerName, docs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) handleGetMetrics(c *gin.Context) {
	record, err := s.metrics.Get(c.Request.Context(), c.Param("issuerId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"metrics": record,
	})
}
