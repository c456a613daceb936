package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

var _ driving.AnalysisService = (*AnalysisService)(nil)

const (
	// topKSingleIssuer is the retrieval depth for a single-issuer query.
	topKSingleIssuer = 20

	// topKPerIssuer is the retrieval depth per issuer when a query spans
	// several issuers, keeping the total context balanced.
	topKPerIssuer = 10

	// sourceExcerptLen bounds the excerpt attached to each source ref.
	sourceExcerptLen = 200

	// fallbackInsightLen bounds the raw text reused when the insight
	// response fails JSON validation.
	fallbackInsightLen = 500
)

// noEvidenceAnswer is returned with WarningType when retrieval finds
// nothing to cite.
const noEvidenceAnswer = "No se encontraron documentos relevantes para responder esta consulta. " +
	"Verifique que los documentos del emisor hayan sido procesados."

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// AnalysisService answers analyst questions with retrieval-grounded
// generation, compares issuers on stored metrics, and produces
// executive insights. Comparison and insight results are cached.
type AnalysisService struct {
	retrieval driving.RetrievalService
	docs      driven.DocumentStore
	metrics   driven.MetricsStore
	llm       driven.LLMService
	cache     driven.Cache
	now       func() time.Time
}

// AnalysisOption configures the analysis service.
type AnalysisOption func(*AnalysisService)

// WithAnalysisClock overrides the timestamp source for tests.
func WithAnalysisClock(now func() time.Time) AnalysisOption {
	return func(s *AnalysisService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(retrieval driving.RetrievalService, docs driven.DocumentStore, metrics driven.MetricsStore, llm driven.LLMService, cache driven.Cache, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		retrieval: retrieval,
		docs:      docs,
		metrics:   metrics,
		llm:       llm,
		cache:     cache,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Answer runs a RAG query. With several issuer ids the retrieval is
// balanced per issuer; with one or none it is a single scoped search.
// An indexed-but-unmatched query returns a canned notice, not an
// error; an empty index is ErrNoEvidence.
func (s *AnalysisService) Answer(ctx context.Context, query string, issuerIDs []string, analysisType string) (*domain.AnswerResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	scope := ""
	if len(issuerIDs) == 1 {
		scope = issuerIDs[0]
	}
	indexed, err := s.docs.HasChunks(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: checking index: %v", domain.ErrUpstream, err)
	}
	if !indexed {
		return nil, fmt.Errorf("%w: scope %q", domain.ErrNoEvidence, scope)
	}

	chunks, err := s.gatherEvidence(ctx, query, issuerIDs)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		logger.Debug("no relevant chunks for query %q", query)
		return &domain.AnswerResult{
			Answer:      noEvidenceAnswer,
			Sources:     []domain.SourceRef{},
			Metadata:    domain.AnswerMetadata{AnalysisType: analysisType},
			WarningType: "no_relevant_docs",
		}, nil
	}

	evidence := buildEvidenceContext(chunks)
	answer, err := s.llm.Generate(ctx, buildAnswerPrompt(query, evidence, analysisType), driven.GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating answer: %v", domain.ErrUpstream, err)
	}

	return &domain.AnswerResult{
		Answer:  answer,
		Sources: buildSourceRefs(chunks),
		Metadata: domain.AnswerMetadata{
			TotalChunksAnalyzed: len(chunks),
			UniqueDocuments:     collectUniqueDocuments(chunks),
			YearsFound:          collectYears(chunks),
			AnalysisType:        analysisType,
		},
	}, nil
}

// gatherEvidence retrieves chunks for the query scope. Multi-issuer
// queries search each issuer separately so a well-documented issuer
// cannot crowd out the others.
func (s *AnalysisService) gatherEvidence(ctx context.Context, query string, issuerIDs []string) ([]domain.ScoredChunk, error) {
	if len(issuerIDs) <= 1 {
		scope := ""
		if len(issuerIDs) == 1 {
			scope = issuerIDs[0]
		}
		return s.retrieval.Search(ctx, query, scope, topKSingleIssuer)
	}

	var all []domain.ScoredChunk
	for _, id := range issuerIDs {
		chunks, err := s.retrieval.Search(ctx, query, id, topKPerIssuer)
		if err != nil {
			return nil, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// CompareIssuers returns stored metrics side by side. Issuers without
// an extraction run yet are silently omitted. Results are cached under
// the sorted id set so argument order does not fragment the cache.
func (s *AnalysisService) CompareIssuers(ctx context.Context, issuerIDs []string) ([]domain.Comparison, error) {
	if len(issuerIDs) < 2 {
		return nil, fmt.Errorf("%w: at least two issuer ids required", domain.ErrInvalidInput)
	}

	key := compareCacheKey(issuerIDs)
	if cached, ok := s.cache.Get(key); ok {
		if comparisons, ok := cached.([]domain.Comparison); ok {
			logger.Debug("comparison cache hit for %s", key)
			return comparisons, nil
		}
	}

	comparisons := make([]domain.Comparison, 0, len(issuerIDs))
	for _, id := range issuerIDs {
		record, err := s.metrics.GetMetrics(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("no metrics for %s, omitting from comparison", id)
				continue
			}
			return nil, fmt.Errorf("%w: metrics for %s: %v", domain.ErrUpstream, id, err)
		}
		comparisons = append(comparisons, domain.Comparison{
			IssuerID:   id,
			IssuerName: record.IssuerName,
			Metrics:    *record,
		})
	}

	s.cache.Set(key, comparisons)
	return comparisons, nil
}

// Insights generates an executive summary for one issuer. A response
// that fails JSON validation degrades to a plain-text insight instead
// of an error, since even unstructured model output is useful here.
func (s *AnalysisService) Insights(ctx context.Context, issuerID string) (*domain.InsightResult, error) {
	if strings.TrimSpace(issuerID) == "" {
		return nil, fmt.Errorf("%w: issuer id is required", domain.ErrInvalidInput)
	}

	key := "insights:" + issuerID
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*domain.InsightResult); ok {
			logger.Debug("insight cache hit for %s", issuerID)
			return result, nil
		}
	}

	chunks, err := s.retrieval.Search(ctx,
		"situación financiera resultados utilidades activos calificación de riesgo",
		issuerID, topKSingleIssuer)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving evidence: %v", domain.ErrUpstream, err)
	}
	if len(chunks) == 0 {
		return &domain.InsightResult{
			Success: false,
			Message: "No hay documentos procesados para este emisor",
		}, nil
	}

	issuerName := chunks[0].Chunk.Metadata.IssuerName
	raw, err := s.llm.Generate(ctx, buildInsightsPrompt(issuerName, buildEvidenceContext(chunks)), driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating insight: %v", domain.ErrUpstream, err)
	}

	insight := parseInsightResponse(raw)
	insight.GeneratedAt = s.now().UTC().Format(time.RFC3339)

	result := &domain.InsightResult{Success: true, Insight: insight}
	s.cache.Set(key, result)
	return result, nil
}

// parseInsightResponse decodes the structured insight, falling back to
// the raw text with neutral sentiment when decoding fails.
func parseInsightResponse(raw string) *domain.Insight {
	if payload, ok := extractJSONObject(raw); ok {
		var insight domain.Insight
		if err := json.Unmarshal([]byte(payload), &insight); err == nil && insight.Insight != "" {
			return &insight
		}
	}

	logger.Debug("insight response not valid JSON, using raw text")
	text := strings.TrimSpace(raw)
	if len(text) > fallbackInsightLen {
		text = text[:fallbackInsightLen]
	}
	return &domain.Insight{
		Insight:    text,
		Sentiment:  "neutral",
		Confidence: 0.5,
	}
}

// compareCacheKey builds a deterministic cache key from issuer ids.
func compareCacheKey(issuerIDs []string) string {
	ids := make([]string, len(issuerIDs))
	copy(ids, issuerIDs)
	sort.Strings(ids)
	return "compare:" + strings.Join(ids, ",")
}

// buildEvidenceContext renders retrieved chunks for a prompt, best
// match first.
func buildEvidenceContext(chunks []domain.ScoredChunk) string {
	var sb strings.Builder
	for i, sc := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(formatChunkBlock(sc.Chunk))
	}
	return sb.String()
}

// buildSourceRefs maps retrieved chunks to citation records.
func buildSourceRefs(chunks []domain.ScoredChunk) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(chunks))
	for i, sc := range chunks {
		excerpt := sc.Chunk.Text
		if len(excerpt) > sourceExcerptLen {
			excerpt = excerpt[:sourceExcerptLen] + "..."
		}
		refs[i] = domain.SourceRef{
			DocumentTitle: sc.Chunk.Metadata.Title,
			IssuerName:    sc.Chunk.Metadata.IssuerName,
			DocumentType:  sc.Chunk.Metadata.DocType,
			DocumentDate:  sc.Chunk.Metadata.DocumentDate,
			Similarity:    sc.Similarity,
			Excerpt:       excerpt,
		}
	}
	return refs
}

// collectUniqueDocuments groups chunks by document title.
func collectUniqueDocuments(chunks []domain.ScoredChunk) []domain.UniqueDocument {
	byTitle := make(map[string]*domain.UniqueDocument)
	var order []string

	for _, sc := range chunks {
		md := sc.Chunk.Metadata
		if doc, ok := byTitle[md.Title]; ok {
			doc.ChunkCount++
			continue
		}
		byTitle[md.Title] = &domain.UniqueDocument{
			Title:      md.Title,
			Type:       md.DocType,
			Date:       md.DocumentDate,
			Issuer:     md.IssuerName,
			ChunkCount: 1,
		}
		order = append(order, md.Title)
	}

	docs := make([]domain.UniqueDocument, len(order))
	for i, title := range order {
		docs[i] = *byTitle[title]
	}
	return docs
}

// collectYears extracts the distinct calendar years mentioned in the
// evidence, sorted ascending.
func collectYears(chunks []domain.ScoredChunk) []string {
	seen := make(map[string]bool)
	for _, sc := range chunks {
		for _, year := range yearPattern.FindAllString(sc.Chunk.Metadata.DocumentDate+" "+sc.Chunk.Text, -1) {
			seen[year] = true
		}
	}

	years := make([]string, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Strings(years)
	return years
}
