package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
)

// fakeEmbedder returns canned vectors. Unknown texts get defaultVec.
type fakeEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	err        error
	batchCalls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.defaultVec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int   { return len(f.defaultVec) }
func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

// fakeDocStore is an in-memory DocumentStore that preserves write
// order and mirrors the batch-limit contract.
type fakeDocStore struct {
	mu          sync.Mutex
	docs        []*domain.Document
	chunks      []domain.Chunk
	deletedDocs []string

	saveDocErr    error
	saveChunksErr error
	listErr       error
	hasErr        error
}

func (f *fakeDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if f.saveDocErr != nil {
		return f.saveDocErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if f.saveChunksErr != nil {
		return f.saveChunksErr
	}
	if len(chunks) > driven.MaxChunkBatch {
		return fmt.Errorf("batch of %d exceeds limit %d", len(chunks), driven.MaxChunkBatch)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeDocStore) ListChunks(_ context.Context, issuerID string, limit int) ([]domain.Chunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chunk
	for _, c := range f.chunks {
		if issuerID != "" && c.IssuerID != issuerID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDocStore) HasChunks(_ context.Context, issuerID string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.chunks {
		if issuerID == "" || c.IssuerID == issuerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDocStore) DeleteDocumentChunks(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedDocs = append(f.deletedDocs, documentID)
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

// fakeMetricsStore is an in-memory MetricsStore.
type fakeMetricsStore struct {
	mu      sync.Mutex
	records map[string]*domain.IssuerMetrics
	saveErr error
	getErr  error
}

func newFakeMetricsStore() *fakeMetricsStore {
	return &fakeMetricsStore{records: make(map[string]*domain.IssuerMetrics)}
}

func (f *fakeMetricsStore) SaveMetrics(_ context.Context, record *domain.IssuerMetrics) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.IssuerID] = record
	return nil
}

func (f *fakeMetricsStore) GetMetrics(_ context.Context, issuerID string) (*domain.IssuerMetrics, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[issuerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// fakeLLM replays canned responses in order.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

// fakeExtractor maps urls to plain text.
type fakeExtractor struct {
	texts map[string]string
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	text, ok := f.texts[url]
	if !ok {
		return "", fmt.Errorf("no text for %s", url)
	}
	return text, nil
}

// fakeCache records sets and serves gets without expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]any
	gets    []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]any)}
}

func (f *fakeCache) Get(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, key)
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
}
