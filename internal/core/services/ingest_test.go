package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// fakeSplitter splits on blank lines.
type fakeSplitter struct{}

func (fakeSplitter) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "\n\n")
}

func ingestFixture() (*IngestService, *fakeDocStore, *fakeExtractor, *fakeEmbedder) {
	store := &fakeDocStore{}
	extractor := &fakeExtractor{texts: map[string]string{}}
	embedder := &fakeEmbedder{defaultVec: []float32{0.1, 0.2}}

	svc := NewIngestService(store, embedder, extractor, fakeSplitter{},
		WithIngestClock(func() time.Time {
			return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		}))
	return svc, store, extractor, embedder
}

func TestProcessEmptyDocumentList(t *testing.T) {
	svc, store, _, embedder := ingestFixture()

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.ProcessedCount)
	assert.Equal(t, 0, stats.RelevantDocsCount)
	assert.Equal(t, 0, stats.ErrorCount)
	assert.Empty(t, store.docs)
	assert.Zero(t, embedder.batchCalls)
}

func TestProcessRequiresIssuerID(t *testing.T) {
	svc, _, _, _ := ingestFixture()

	_, err := svc.ProcessIssuerDocuments(context.Background(), "", "X", []domain.Document{{Title: "Informe"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessStoresChunksWithDeterministicIDs(t *testing.T) {
	svc, store, extractor, _ := ingestFixture()
	extractor.texts["http://bvn/eeff.pdf"] = "primera parte del informe\n\nsegunda parte del informe"

	docs := []domain.Document{{
		Title: "Estados Financieros Auditados 2024",
		Type:  domain.DocTypeAuditedFinancials,
		Date:  "2024-12-31",
		URL:   "http://bvn/eeff.pdf",
	}}

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ProcessedCount)
	assert.Equal(t, 1, stats.RelevantDocsCount)
	assert.Equal(t, 2, stats.ChunksStored)
	assert.Equal(t, 0, stats.ErrorCount)

	require.Len(t, store.chunks, 2)
	assert.Equal(t, "bdf_estados_financieros_auditados_2024_chunk0", store.chunks[0].ID)
	assert.Equal(t, "bdf_estados_financieros_auditados_2024_chunk1", store.chunks[1].ID)
	assert.Equal(t, 1, store.chunks[1].Index)
	assert.Equal(t, "Banco de Finanzas", store.chunks[0].Metadata.IssuerName)
	assert.Equal(t, domain.DocTypeAuditedFinancials, store.chunks[0].Metadata.DocType)
	assert.NotEmpty(t, store.chunks[0].Metadata.ProcessedAt)
	require.Len(t, store.chunks[0].Embedding, 2)

	// Old chunks cleared before the new write.
	assert.Equal(t, []string{"estados_financieros_auditados_2024"}, store.deletedDocs)

	require.Len(t, store.docs, 1)
	assert.Equal(t, "bdf", store.docs[0].IssuerID)
}

func TestProcessSkipsIrrelevantDocuments(t *testing.T) {
	svc, store, extractor, _ := ingestFixture()
	extractor.texts["http://bvn/eeff.pdf"] = "contenido del informe financiero"

	docs := []domain.Document{
		{Title: "Fotos del evento anual", URL: "http://bvn/fotos.pdf"},
		{Title: "Informe Financiero Trimestral", URL: "http://bvn/eeff.pdf"},
	}

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalDocs)
	assert.Equal(t, 1, stats.RelevantDocsCount)
	assert.Equal(t, 1, stats.ProcessedCount)
	require.Len(t, store.docs, 1)
	assert.Equal(t, "Informe Financiero Trimestral", store.docs[0].Title)
}

func TestProcessOrdersByScoreThenDate(t *testing.T) {
	svc, store, extractor, _ := ingestFixture()
	for _, url := range []string{"http://a", "http://b", "http://c"} {
		extractor.texts[url] = "contenido financiero del documento en " + url
	}

	docs := []domain.Document{
		{Title: "Informe Financiero 2022", Date: "2022-12-31", URL: "http://a"},
		{Title: "Estados Financieros Auditados 2024", Date: "2024-12-31", URL: "http://b"},
		{Title: "Informe Financiero 2023", Date: "2023-12-31", URL: "http://c"},
	}

	_, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	require.Len(t, store.docs, 3)
	assert.Equal(t, "Estados Financieros Auditados 2024", store.docs[0].Title)
	assert.Equal(t, "Informe Financiero 2023", store.docs[1].Title)
	assert.Equal(t, "Informe Financiero 2022", store.docs[2].Title)
}

func TestProcessCapsDocumentCount(t *testing.T) {
	store := &fakeDocStore{}
	extractor := &fakeExtractor{texts: map[string]string{}}
	svc := NewIngestService(store, &fakeEmbedder{defaultVec: []float32{1}}, extractor, fakeSplitter{},
		WithMaxDocs(2))

	var docs []domain.Document
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("http://doc/%d", i)
		extractor.texts[url] = "contenido del informe financiero"
		docs = append(docs, domain.Document{
			Title: fmt.Sprintf("Informe Financiero %d", i),
			URL:   url,
		})
	}

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.RelevantDocsCount)
	assert.Equal(t, 2, stats.ProcessedCount)
}

func TestProcessContinuesAfterDocumentFailure(t *testing.T) {
	svc, store, extractor, _ := ingestFixture()
	// Only the second document has extractable text.
	extractor.texts["http://ok"] = "contenido del informe financiero"

	docs := []domain.Document{
		{Title: "Informe Financiero Roto", URL: "http://broken"},
		{Title: "Informe Financiero Bueno", URL: "http://ok"},
	}

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, 1, stats.ProcessedCount)
	require.Len(t, store.docs, 1)
	assert.Equal(t, "Informe Financiero Bueno", store.docs[0].Title)
}

func TestProcessSplitsLargeBatches(t *testing.T) {
	svc, store, extractor, _ := ingestFixture()

	// 250 pieces force three write batches under the store limit.
	pieces := make([]string, 250)
	for i := range pieces {
		pieces[i] = fmt.Sprintf("fragmento numero %d del informe", i)
	}
	extractor.texts["http://big"] = strings.Join(pieces, "\n\n")

	docs := []domain.Document{{Title: "Informe Financiero Extenso", URL: "http://big"}}

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Equal(t, 250, stats.ChunksStored)
	assert.Len(t, store.chunks, 250)
}

func TestProcessEmbeddingFailureCountsError(t *testing.T) {
	store := &fakeDocStore{}
	extractor := &fakeExtractor{texts: map[string]string{"http://x": "contenido financiero"}}
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	svc := NewIngestService(store, embedder, extractor, fakeSplitter{})

	stats, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas",
		[]domain.Document{{Title: "Informe Financiero", URL: "http://x"}})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, 0, stats.ChunksStored)
	assert.Empty(t, store.chunks)
}

func TestProcessLogsSectionHeader(t *testing.T) {
	var buf bytes.Buffer
	logger.SetVerbose(true)
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	svc, _, extractor, _ := ingestFixture()
	extractor.texts["http://bvn/eeff.pdf"] = "contenido del informe financiero"

	docs := []domain.Document{
		{Title: "Fotos del evento anual", URL: "http://bvn/fotos.pdf"},
		{Title: "Informe Financiero Trimestral", URL: "http://bvn/eeff.pdf"},
	}

	_, err := svc.ProcessIssuerDocuments(context.Background(), "bdf", "Banco de Finanzas", docs)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Procesando 1 documentos de Banco de Finanzas (1 relevantes de 2)")
}

func TestSanitizeDocID(t *testing.T) {
	assert.Equal(t, "estados_financieros_2024", sanitizeDocID("Estados Financieros 2024!"))
	assert.Equal(t, "informe", sanitizeDocID("  Informe  "))

	long := sanitizeDocID(strings.Repeat("a", 200))
	assert.LessOrEqual(t, len(long), maxDocIDLen)

	// Titles with no usable characters get a generated id.
	assert.NotEmpty(t, sanitizeDocID("¡¡¡***!!!"))
}
