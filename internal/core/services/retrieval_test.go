package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
)

func storedChunk(id, issuerID string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		IssuerID:  issuerID,
		Text:      "texto " + id,
		Embedding: embedding,
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	store := &fakeDocStore{chunks: []domain.Chunk{
		storedChunk("far", "bdf", []float32{0, 1, 0}),
		storedChunk("near", "bdf", []float32{1, 0.1, 0}),
		storedChunk("exact", "bdf", []float32{1, 0, 0}),
	}}
	embedder := &fakeEmbedder{defaultVec: []float32{1, 0, 0}}

	svc := NewRetrievalService(store, embedder)
	results, err := svc.Search(context.Background(), "liquidez", "bdf", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "exact", results[0].Chunk.ID)
	assert.Equal(t, "near", results[1].Chunk.ID)
	assert.Equal(t, "far", results[2].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
}

func TestSearchFiltersByIssuer(t *testing.T) {
	store := &fakeDocStore{chunks: []domain.Chunk{
		storedChunk("mine", "bdf", []float32{1, 0}),
		storedChunk("other", "banpro", []float32{1, 0}),
	}}
	embedder := &fakeEmbedder{defaultVec: []float32{1, 0}}

	svc := NewRetrievalService(store, embedder)
	results, err := svc.Search(context.Background(), "cartera", "bdf", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mine", results[0].Chunk.ID)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	store := &fakeDocStore{}
	for i := 0; i < 30; i++ {
		store.chunks = append(store.chunks, storedChunk(
			string(rune('a'+i)), "bdf", []float32{1, 0}))
	}
	embedder := &fakeEmbedder{defaultVec: []float32{1, 0}}

	svc := NewRetrievalService(store, embedder)

	results, err := svc.Search(context.Background(), "q", "bdf", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Non-positive topK falls back to the default.
	results, err = svc.Search(context.Background(), "q", "bdf", 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestSearchDegradesOnEmbedderFailure(t *testing.T) {
	store := &fakeDocStore{chunks: []domain.Chunk{
		storedChunk("a", "bdf", []float32{1, 0}),
	}}
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}

	svc := NewRetrievalService(store, embedder)
	results, err := svc.Search(context.Background(), "q", "bdf", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDegradesOnStoreFailure(t *testing.T) {
	store := &fakeDocStore{listErr: errors.New("db locked")}
	embedder := &fakeEmbedder{defaultVec: []float32{1, 0}}

	svc := NewRetrievalService(store, embedder)
	results, err := svc.Search(context.Background(), "q", "bdf", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyStore(t *testing.T) {
	svc := NewRetrievalService(&fakeDocStore{}, &fakeEmbedder{defaultVec: []float32{1, 0}})

	results, err := svc.Search(context.Background(), "q", "", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs.
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
