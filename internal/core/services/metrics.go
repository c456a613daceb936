package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

var _ driving.MetricsService = (*MetricsService)(nil)

// DefaultChunkFetchLimit bounds how many chunks an extraction pulls
// from the store before prioritization.
const DefaultChunkFetchLimit = 5000

// MetricsService runs the extraction pipeline: fetch evidence,
// prioritize it, ask the model for a strict-JSON record, validate,
// normalize currency, derive missing ratios, persist.
type MetricsService struct {
	docs        driven.DocumentStore
	metrics     driven.MetricsStore
	llm         driven.LLMService
	prioritizer *Prioritizer

	currencyPolicy func() domain.CurrencyPolicy
	fetchLimit     int
	contextBudget  int
	now            func() time.Time
}

// MetricsOption configures the metrics service.
type MetricsOption func(*MetricsService)

// WithCurrencyPolicy sets the policy source. A function so a config
// reload can change the rate without rebuilding services.
func WithCurrencyPolicy(f func() domain.CurrencyPolicy) MetricsOption {
	return func(s *MetricsService) {
		if f != nil {
			s.currencyPolicy = f
		}
	}
}

// WithFetchLimit sets the chunk fetch limit.
func WithFetchLimit(n int) MetricsOption {
	return func(s *MetricsService) {
		if n > 0 {
			s.fetchLimit = n
		}
	}
}

// WithContextBudget sets the assembled context character budget.
func WithContextBudget(n int) MetricsOption {
	return func(s *MetricsService) {
		if n > 0 {
			s.contextBudget = n
		}
	}
}

// WithMetricsClock overrides the timestamp source for tests.
func WithMetricsClock(now func() time.Time) MetricsOption {
	return func(s *MetricsService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMetricsService creates a metrics extraction service.
func NewMetricsService(docs driven.DocumentStore, metrics driven.MetricsStore, llm driven.LLMService, prioritizer *Prioritizer, opts ...MetricsOption) *MetricsService {
	s := &MetricsService{
		docs:           docs,
		metrics:        metrics,
		llm:            llm,
		prioritizer:    prioritizer,
		currencyPolicy: domain.DefaultCurrencyPolicy,
		fetchLimit:     DefaultChunkFetchLimit,
		contextBudget:  DefaultContextBudget,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Extract runs the full pipeline for one issuer and replaces its
// stored record. A cancelled context never leaves a partial write: the
// record is saved only after every normalization step completed.
func (s *MetricsService) Extract(ctx context.Context, issuerID, issuerName string) (*domain.IssuerMetrics, error) {
	if strings.TrimSpace(issuerID) == "" {
		return nil, fmt.Errorf("%w: issuer id is required", domain.ErrInvalidInput)
	}

	chunks, err := s.docs.ListChunks(ctx, issuerID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: listing chunks for %s: %v", domain.ErrUpstream, issuerID, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: issuer %s", domain.ErrNoEvidence, issuerID)
	}

	sorted := s.prioritizer.Prioritize(chunks)
	evidence, included := s.prioritizer.AssembleContext(sorted, s.contextBudget)
	logger.Debug("extraction for %s: %d chunks fetched, %d in context (%d chars)",
		issuerID, len(chunks), included, len(evidence))

	raw, err := s.llm.Generate(ctx, buildMetricsPrompt(issuerName, evidence), driven.GenerateOptions{
		MaxTokens:   8192,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generation for %s: %v", domain.ErrUpstream, issuerID, err)
	}

	record, err := parseMetricsResponse(raw)
	if err != nil {
		return nil, err
	}

	record.IssuerID = issuerID
	record.IssuerName = issuerName
	record.ExtractedAt = s.now().UTC()
	record.ChunksAnalyzed = included

	fillCapitalFromSolvency(record)
	NormalizeCurrency(record, s.currencyPolicy())
	DeriveRatios(record)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.metrics.SaveMetrics(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: saving metrics for %s: %v", domain.ErrUpstream, issuerID, err)
	}

	logger.Info("metrics extracted for %s (%d chunks analyzed)", issuerID, included)
	return record, nil
}

// Get returns the stored record for an issuer.
func (s *MetricsService) Get(ctx context.Context, issuerID string) (*domain.IssuerMetrics, error) {
	if strings.TrimSpace(issuerID) == "" {
		return nil, fmt.Errorf("%w: issuer id is required", domain.ErrInvalidInput)
	}
	return s.metrics.GetMetrics(ctx, issuerID)
}

// parseMetricsResponse validates the model output into a metrics
// record. Markdown fences and prose around the JSON object are
// tolerated; everything else is a schema error.
func parseMetricsResponse(raw string) (*domain.IssuerMetrics, error) {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return nil, &domain.SchemaError{
			Kind:   domain.SchemaMalformedJSON,
			Detail: "no JSON object in response",
		}
	}

	var record domain.IssuerMetrics
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, &domain.SchemaError{
			Kind:   domain.SchemaMalformedJSON,
			Detail: err.Error(),
		}
	}

	if record.Metadata == (domain.MetricsMetadata{}) {
		return nil, &domain.SchemaError{
			Kind:   domain.SchemaMissingField,
			Field:  "metadata",
			Detail: "response carries no extraction metadata",
		}
	}

	for field, v := range map[string]*float64{
		"solvencia.activoTotal":        record.Solvencia.ActivoTotal,
		"capital.activosTotales":       record.Capital.ActivosTotales,
		"rentabilidad.ingresosTotales": record.Rentabilidad.IngresosTotales,
	} {
		if v != nil && *v < 0 {
			return nil, &domain.SchemaError{
				Kind:   domain.SchemaOutOfRange,
				Field:  field,
				Detail: fmt.Sprintf("negative total %v", *v),
			}
		}
	}

	return &record, nil
}

// extractJSONObject pulls the outermost {...} from a model response,
// stripping markdown code fences first.
func extractJSONObject(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

// fillCapitalFromSolvency mirrors the balance sheet totals into the
// capital block when the model only filled the solvency one.
func fillCapitalFromSolvency(m *domain.IssuerMetrics) {
	if m.Capital.ActivosTotales == nil {
		m.Capital.ActivosTotales = m.Solvencia.ActivoTotal
	}
	if m.Capital.Pasivos == nil {
		m.Capital.Pasivos = m.Solvencia.PasivoTotal
	}
	if m.Capital.Patrimonio == nil {
		m.Capital.Patrimonio = m.Solvencia.Patrimonio
	}
}
