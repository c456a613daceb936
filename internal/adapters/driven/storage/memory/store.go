// Package memory provides in-memory implementations of the storage
// ports, used for development runs without a database file and as
// lightweight doubles in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
)

var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.MetricsStore  = (*MetricsStore)(nil)
)

// DocumentStore keeps documents and chunks in memory. Chunks are
// listed in reverse insertion order, matching the persistent store's
// most-recently-indexed-first contract.
type DocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]domain.Document
	chunks []domain.Chunk
	byID   map[string]int
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]domain.Document),
		byID: make(map[string]int),
	}
}

// SaveDocument stores or updates a document record.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

// SaveChunks writes one batch of chunks, keyed by chunk id.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) > driven.MaxChunkBatch {
		return fmt.Errorf("batch of %d chunks exceeds limit of %d", len(chunks), driven.MaxChunkBatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		if idx, ok := s.byID[chunk.ID]; ok {
			s.chunks[idx] = chunk
			continue
		}
		s.byID[chunk.ID] = len(s.chunks)
		s.chunks = append(s.chunks, chunk)
	}
	return nil
}

// ListChunks returns chunks newest-first, filtered by issuer when
// issuerID is non-empty.
func (s *DocumentStore) ListChunks(_ context.Context, issuerID string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Chunk
	for i := len(s.chunks) - 1; i >= 0; i-- {
		c := s.chunks[i]
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

// HasChunks reports whether any chunk exists for the scope.
func (s *DocumentStore) HasChunks(_ context.Context, issuerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.chunks {
		if issuerID == "" || c.IssuerID == issuerID {
			return true, nil
		}
	}
	return false, nil
}

// DeleteDocumentChunks removes all chunks of a document.
func (s *DocumentStore) DeleteDocumentChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept

	s.byID = make(map[string]int, len(s.chunks))
	for i, c := range s.chunks {
		s.byID[c.ID] = i
	}
	return nil
}

// MetricsStore keeps extracted metrics in memory.
type MetricsStore struct {
	mu      sync.RWMutex
	records map[string]domain.IssuerMetrics
}

// NewMetricsStore creates an empty in-memory metrics store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{records: make(map[string]domain.IssuerMetrics)}
}

// SaveMetrics stores or replaces an issuer's metrics record.
func (s *MetricsStore) SaveMetrics(_ context.Context, record *domain.IssuerMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.IssuerID] = *record
	return nil
}

// GetMetrics retrieves the current metrics record for an issuer.
func (s *MetricsStore) GetMetrics(_ context.Context, issuerID string) (*domain.IssuerMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[issuerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}
