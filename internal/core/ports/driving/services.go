package driving

import (
	"context"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Search returns up to topK chunks ranked by embedding similarity,
	// restricted to issuerID when non-empty. Upstream failures degrade
	// to an empty result.
	Search(ctx context.Context, query, issuerID string, topK int) ([]domain.ScoredChunk, error)
}

// AnalysisService answers analyst questions over the document universe.
type AnalysisService interface {
	// Answer runs a RAG query scoped to one or more issuers.
	Answer(ctx context.Context, query string, issuerIDs []string, analysisType string) (*domain.AnswerResult, error)

	// CompareIssuers returns the stored metrics for each issuer.
	// Requires at least two issuer ids.
	CompareIssuers(ctx context.Context, issuerIDs []string) ([]domain.Comparison, error)

	// Insights generates an executive summary for an issuer.
	Insights(ctx context.Context, issuerID string) (*domain.InsightResult, error)
}

// MetricsService extracts and serves normalized financial metrics.
type MetricsService interface {
	// Extract runs the full extraction pipeline for an issuer and
	// persists the resulting record.
	Extract(ctx context.Context, issuerID, issuerName string) (*domain.IssuerMetrics, error)

	// Get returns the stored metrics record for an issuer.
	Get(ctx context.Context, issuerID string) (*domain.IssuerMetrics, error)
}

// IngestService processes issuer documents into stored chunks.
type IngestService interface {
	// ProcessIssuerDocuments extracts, chunks, embeds, and persists the
	// most relevant documents for an issuer.
	ProcessIssuerDocuments(ctx context.Context, issuerID, issuerName string, docs []domain.Document) (domain.IngestStats, error)
}
