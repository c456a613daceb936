package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// h is shorthand for JSON request bodies.
type h = map[string]any

// stubAnalysis implements driving.AnalysisService.
type stubAnalysis struct {
	answerResult *domain.AnswerResult
	answerErr    error
	comparisons  []domain.Comparison
	compareErr   error
	insight      *domain.InsightResult
	insightErr   error
}

func (s *stubAnalysis) Answer(_ context.Context, _ string, _ []string, _ string) (*domain.AnswerResult, error) {
	return s.answerResult, s.answerErr
}

func (s *stubAnalysis) CompareIssuers(_ context.Context, _ []string) ([]domain.Comparison, error) {
	return s.comparisons, s.compareErr
}

func (s *stubAnalysis) Insights(_ context.Context, _ string) (*domain.InsightResult, error) {
	return s.insight, s.insightErr
}

// stubMetrics implements driving.MetricsService.
type stubMetrics struct {
	record     *domain.IssuerMetrics
	extractErr error
	getErr     error
}

func (s *stubMetrics) Extract(_ context.Context, _, _ string) (*domain.IssuerMetrics, error) {
	return s.record, s.extractErr
}

func (s *stubMetrics) Get(_ context.Context, _ string) (*domain.IssuerMetrics, error) {
	return s.record, s.getErr
}

// stubRetrieval implements driving.RetrievalService.
type stubRetrieval struct {
	results []domain.ScoredChunk
	err     error
}

func (s *stubRetrieval) Search(_ context.Context, _, _ string, _ int) ([]domain.ScoredChunk, error) {
	return s.results, s.err
}

// stubIngest implements driving.IngestService.
type stubIngest struct {
	stats domain.IngestStats
	err   error
	docs  []domain.Document
}

func (s *stubIngest) ProcessIssuerDocuments(_ context.Context, _, _ string, docs []domain.Document) (domain.IngestStats, error) {
	s.docs = docs
	return s.stats, s.err
}

func newTestServer(analysis *stubAnalysis, metrics *stubMetrics, retrieval *stubRetrieval) *Server {
	if analysis == nil {
		analysis = &stubAnalysis{}
	}
	if metrics == nil {
		metrics = &stubMetrics{}
	}
	if retrieval == nil {
		retrieval = &stubRetrieval{}
	}
	return NewServer(analysis, metrics, retrieval, &stubIngest{})
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuerySuccess(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		answerResult: &domain.AnswerResult{Answer: "La utilidad fue de 20 millones."},
	}, nil, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/query", h{
		"query":     "¿utilidad?",
		"issuerIds": []string{"bdf"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "La utilidad fue de 20 millones.")
}

func TestQueryInvalidInputIs400(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		answerErr: fmt.Errorf("%w: query is required", domain.ErrInvalidInput),
	}, nil, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/query", h{"query": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryNoEvidenceIs503(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		answerErr: fmt.Errorf("%w: scope bdf", domain.ErrNoEvidence),
	}, nil, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/query", h{"query": "¿liquidez?"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryUpstreamIs500(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		answerErr: fmt.Errorf("%w: db locked", domain.ErrUpstream),
	}, nil, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/query", h{"query": "¿liquidez?"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQueryMalformedBodyIs400(t *testing.T) {
	server := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompare(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		comparisons: []domain.Comparison{{IssuerID: "bdf"}, {IssuerID: "banpro"}},
	}, nil, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/compare", h{
		"issuerIds": []string{"bdf", "banpro"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "banpro")
}

func TestGetMetricsNotFoundIs404(t *testing.T) {
	server := newTestServer(nil, &stubMetrics{getErr: domain.ErrNotFound}, nil)

	rec := doJSON(t, server, http.MethodGet, "/api/metrics/nadie", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractMalformedOutputIs502(t *testing.T) {
	server := newTestServer(nil, &stubMetrics{
		extractErr: &domain.SchemaError{Kind: domain.SchemaMalformedJSON, Detail: "no JSON"},
	}, nil)

	rec := doJSON(t, server, http.MethodPost, "/api/metrics/extract", h{
		"issuerId": "bdf", "issuerName": "Banco de Finanzas",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchReturnsResults(t *testing.T) {
	server := newTestServer(nil, nil, &stubRetrieval{
		results: []domain.ScoredChunk{{
			Chunk:      domain.Chunk{ID: "c0", Text: "texto"},
			Similarity: 0.9,
		}},
	})

	rec := doJSON(t, server, http.MethodGet, "/api/search?q=liquidez&limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "c0")
}

func TestIngestClassifiesDocuments(t *testing.T) {
	ingest := &stubIngest{stats: domain.IngestStats{TotalDocs: 1, ProcessedCount: 1, RelevantDocsCount: 1}}
	server := NewServer(&stubAnalysis{}, &stubMetrics{}, &stubRetrieval{}, ingest)

	rec := doJSON(t, server, http.MethodPost, "/api/ingest", h{
		"issuerId":   "bdf",
		"issuerName": "Banco de Finanzas",
		"documents": []h{{
			"title": "Estados Financieros Auditados 2024",
			"type":  "Informe de los Auditores",
			"date":  "2024-12-31",
			"url":   "https://example.com/ef-2024.pdf",
		}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ingest.docs, 1)
	assert.Equal(t, domain.DocTypeAuditedFinancials, ingest.docs[0].Type)
	assert.Equal(t, "bdf", ingest.docs[0].IssuerID)
}

func TestInsightsErrorMapping(t *testing.T) {
	server := newTestServer(&stubAnalysis{
		insightErr: errors.New("boom"),
	}, nil, nil)

	rec := doJSON(t, server, http.MethodGet, "/api/insights/bdf", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
