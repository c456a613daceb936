package driven

import (
	"context"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

// MaxChunkBatch is the store's per-operation write limit. SaveChunks
// rejects larger slices; callers split their writes into batches.
const MaxChunkBatch = 100

// DocumentStore persists documents and chunks.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks writes one batch of chunks. The batch must not exceed
	// MaxChunkBatch records. Writes are keyed by chunk ID, so rewriting
	// the same chunk replaces it.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// ListChunks returns chunks most-recently-indexed first, filtered
	// by issuer when issuerID is non-empty, up to limit records.
	ListChunks(ctx context.Context, issuerID string, limit int) ([]domain.Chunk, error)

	// HasChunks reports whether any chunk exists for the scope.
	// An empty issuerID checks the whole store.
	HasChunks(ctx context.Context, issuerID string) (bool, error)

	// DeleteDocumentChunks removes all chunks of a document, used when
	// a document is reprocessed.
	DeleteDocumentChunks(ctx context.Context, documentID string) error
}

// MetricsStore persists extracted issuer metrics with replace
// semantics: each save overwrites the issuer's previous record.
type MetricsStore interface {
	// SaveMetrics stores or replaces an issuer's metrics record.
	SaveMetrics(ctx context.Context, record *domain.IssuerMetrics) error

	// GetMetrics retrieves the current metrics record for an issuer.
	// Returns domain.ErrNotFound when no extraction has run.
	GetMetrics(ctx context.Context, issuerID string) (*domain.IssuerMetrics, error)
}
