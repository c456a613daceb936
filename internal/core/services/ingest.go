package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driven"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/ports/driving"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

var _ driving.IngestService = (*IngestService)(nil)

// DefaultMaxDocs caps how many documents one ingestion run processes,
// most relevant first.
const DefaultMaxDocs = 20

// maxDocIDLen bounds the sanitized title used as a document id.
const maxDocIDLen = 50

// TextChunker splits document text into bounded overlapping pieces.
type TextChunker interface {
	Chunk(text string) []string
}

// IngestService turns issuer documents into stored, embedded chunks.
// Reprocessing a document is idempotent: chunk ids are deterministic
// and the document's previous chunks are deleted first.
type IngestService struct {
	docs      driven.DocumentStore
	embedder  driven.EmbeddingService
	extractor driven.TextExtractor
	splitter  TextChunker

	maxDocs int
	now     func() time.Time
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithMaxDocs caps the documents processed per run.
func WithMaxDocs(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.maxDocs = n
		}
	}
}

// WithIngestClock overrides the timestamp source for tests.
func WithIngestClock(now func() time.Time) IngestOption {
	return func(s *IngestService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIngestService creates an ingest service.
func NewIngestService(docs driven.DocumentStore, embedder driven.EmbeddingService, extractor driven.TextExtractor, splitter TextChunker, opts ...IngestOption) *IngestService {
	s := &IngestService{
		docs:      docs,
		embedder:  embedder,
		extractor: extractor,
		splitter:  splitter,
		maxDocs:   DefaultMaxDocs,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ProcessIssuerDocuments scores the given documents for relevance,
// processes the best ones, and reports per-run counts. A document that
// fails is counted and skipped; the run continues with the rest.
func (s *IngestService) ProcessIssuerDocuments(ctx context.Context, issuerID, issuerName string, docs []domain.Document) (domain.IngestStats, error) {
	stats := domain.IngestStats{TotalDocs: len(docs)}

	if strings.TrimSpace(issuerID) == "" {
		return stats, fmt.Errorf("%w: issuer id is required", domain.ErrInvalidInput)
	}
	if len(docs) == 0 {
		return stats, nil
	}

	relevant := selectRelevant(docs)
	stats.RelevantDocsCount = len(relevant)
	if len(relevant) > s.maxDocs {
		relevant = relevant[:s.maxDocs]
	}

	logger.Section(fmt.Sprintf("Procesando %d documentos de %s (%d relevantes de %d)",
		len(relevant), issuerName, stats.RelevantDocsCount, stats.TotalDocs))

	for _, doc := range relevant {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stored, err := s.processDocument(ctx, issuerID, issuerName, doc)
		if err != nil {
			logger.Warn("document %q failed: %v", doc.Title, err)
			stats.ErrorCount++
			continue
		}
		stats.ProcessedCount++
		stats.ChunksStored += stored
	}

	logger.Info("ingestion for %s done: %d processed, %d errors, %d chunks",
		issuerID, stats.ProcessedCount, stats.ErrorCount, stats.ChunksStored)
	return stats, nil
}

// selectRelevant keeps documents with a positive relevance score,
// ordered best first: score descending, then publication date
// descending.
func selectRelevant(docs []domain.Document) []domain.Document {
	relevant := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if d.RelevanceScore() > 0 {
			relevant = append(relevant, d)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		si, sj := relevant[i].RelevanceScore(), relevant[j].RelevanceScore()
		if si != sj {
			return si > sj
		}
		ti, okI := parseDocumentDate(relevant[i].Date)
		tj, okJ := parseDocumentDate(relevant[j].Date)
		if okI && okJ {
			return ti.After(tj)
		}
		return okI && !okJ
	})

	return relevant
}

// processDocument runs one document through extraction, chunking,
// embedding, and batched persistence. Returns the number of chunks
// stored.
func (s *IngestService) processDocument(ctx context.Context, issuerID, issuerName string, doc domain.Document) (int, error) {
	docID := doc.ID
	if docID == "" {
		docID = sanitizeDocID(doc.Title)
	}

	text, err := s.extractor.Extract(ctx, doc.URL)
	if err != nil {
		return 0, fmt.Errorf("extracting text: %w", err)
	}

	pieces := s.splitter.Chunk(text)
	if len(pieces) == 0 {
		logger.Debug("document %q yielded no usable text", doc.Title)
		return 0, nil
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fmt.Errorf("embedding %d chunks: %w", len(pieces), err)
	}
	if len(embeddings) != len(pieces) {
		return 0, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(pieces), len(embeddings))
	}

	now := s.now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(issuerID, docID, i),
			IssuerID:   issuerID,
			DocumentID: docID,
			Index:      i,
			Text:       piece,
			Embedding:  embeddings[i],
			Metadata: domain.ChunkMetadata{
				Title:        doc.Title,
				DocType:      doc.Type,
				DocumentDate: doc.Date,
				IssuerName:   issuerName,
				DocumentURL:  doc.URL,
				ProcessedAt:  now.Format(time.RFC3339),
			},
		}
	}

	record := doc
	record.ID = docID
	record.IssuerID = issuerID
	record.CreatedAt = now
	if err := s.docs.SaveDocument(ctx, &record); err != nil {
		return 0, fmt.Errorf("saving document: %w", err)
	}

	// Stale chunks from a previous processing run would survive if the
	// document shrank, so clear before writing.
	if err := s.docs.DeleteDocumentChunks(ctx, docID); err != nil {
		return 0, fmt.Errorf("clearing previous chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += driven.MaxChunkBatch {
		end := start + driven.MaxChunkBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.docs.SaveChunks(ctx, chunks[start:end]); err != nil {
			return 0, fmt.Errorf("saving chunk batch %d-%d: %w", start, end, err)
		}
	}

	logger.Debug("document %q stored as %s (%d chunks)", doc.Title, docID, len(chunks))
	return len(chunks), nil
}

// sanitizeDocID turns a document title into a storage-safe id. Titles
// that sanitize to nothing get a random id instead.
func sanitizeDocID(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
		if sb.Len() >= maxDocIDLen {
			break
		}
	}

	id := strings.Trim(sb.String(), "_")
	if id == "" {
		return uuid.NewString()
	}
	return id
}
