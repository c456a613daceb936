package services

import (
	"context"
	"math"
	"sort"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the result limit when the caller passes none.
const DefaultTopK = 10

// DefaultCandidateLimit bounds how many stored chunks are scored per
// query. Candidates arrive most-recently-indexed first.
const DefaultCandidateLimit = 500

// RetrievalService ranks stored chunks against a query embedding.
type RetrievalService struct {
	store          driven.DocumentStore
	embedder       driven.EmbeddingService
	candidateLimit int
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithCandidateLimit sets the per-query candidate fetch limit.
func WithCandidateLimit(n int) RetrievalOption {
	return func(s *RetrievalService) {
		if n > 0 {
			s.candidateLimit = n
		}
	}
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(store driven.DocumentStore, embedder driven.EmbeddingService, opts ...RetrievalOption) *RetrievalService {
	s := &RetrievalService{
		store:          store,
		embedder:       embedder,
		candidateLimit: DefaultCandidateLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Search returns up to topK chunks ranked by cosine similarity to the
// query, restricted to issuerID when non-empty. Failures of the
// embedding service or the store degrade to an empty result: for the
// caller, "no evidence" and "evidence temporarily unreachable" both
// mean there is nothing to cite.
func (s *RetrievalService) Search(ctx context.Context, query, issuerID string, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("query embedding failed (issuer=%s): %v", issuerID, err)
		return []domain.ScoredChunk{}, nil
	}

	candidates, err := s.store.ListChunks(ctx, issuerID, s.candidateLimit)
	if err != nil {
		logger.Warn("chunk listing failed (issuer=%s): %v", issuerID, err)
		return []domain.ScoredChunk{}, nil
	}

	if len(candidates) == 0 {
		logger.Debug("no candidate chunks for issuer=%q", issuerID)
		return []domain.ScoredChunk{}, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		scored = append(scored, domain.ScoredChunk{
			Chunk:      chunk,
			Similarity: CosineSimilarity(queryEmbedding, chunk.Embedding),
		})
	}

	// Stable: ties keep the store's ordering.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	logger.Debug("search issuer=%q scored %d candidates, returning %d", issuerID, len(candidates), len(scored))
	return scored, nil
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched dimensions or a zero vector yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
