package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	c := New()
	assert.Nil(t, c.Chunk(""))
}

func TestChunkShortInputSingleChunk(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(20))

	text := "Estados financieros del primer trimestre."
	chunks := c.Chunk(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkTinyFragmentDiscarded(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(10))
	assert.Empty(t, c.Chunk("corto"))
}

func TestChunkRespectsMaxSize(t *testing.T) {
	sizes := []int{40, 100, 333, 1500}
	text := strings.Repeat("El banco reporta resultados positivos. ", 200)

	for _, size := range sizes {
		c := New(WithChunkSize(size), WithOverlap(size/5))
		for i, chunk := range c.Chunk(text) {
			assert.LessOrEqual(t, len(chunk), size, "size=%d chunk=%d", size, i)
		}
	}
}

func TestChunkMinimumLength(t *testing.T) {
	c := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("Informe anual auditado del emisor bancario. ", 40)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Greater(t, len(chunk), 10)
	}
}

func TestChunkIdempotent(t *testing.T) {
	c := New(WithChunkSize(120), WithOverlap(30))
	text := strings.Repeat("La cartera de créditos creció durante el período. ", 60)

	first := c.Chunk(text)
	second := c.Chunk(text)

	assert.Equal(t, first, second)
}

func TestChunkBreaksAtSentenceBoundary(t *testing.T) {
	c := New(WithChunkSize(80), WithOverlap(0))

	// The period sits past the midpoint of the first window, so the
	// first chunk should end on it rather than cutting the next
	// sentence in half.
	text := "El patrimonio del banco alcanzó niveles históricos este año. " +
		"Los depósitos del público crecieron de forma sostenida en el mismo período."

	chunks := c.Chunk(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "."), "chunk %q should end at a sentence", chunks[0])
}

func TestChunkAdjacentChunksOverlap(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(40))
	text := strings.Repeat("abcdefghij", 50) // no periods: hard cuts only

	chunks := c.Chunk(text)
	require.GreaterOrEqual(t, len(chunks), 2)

	// The tail of the first chunk reappears at the head of the second.
	assert.Equal(t, chunks[0][len(chunks[0])-40:], chunks[1][:40])
}

func TestChunkKeepsValidUTF8(t *testing.T) {
	c := New(WithChunkSize(101), WithOverlap(10))

	// Two-byte runes with an odd window size force cuts that would
	// otherwise land mid-rune. No periods, so every cut is a hard one.
	text := strings.Repeat("á", 500)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d is not valid UTF-8", i)
	}
}

func TestChunkCoversWholeText(t *testing.T) {
	c := New(WithChunkSize(200), WithOverlap(50))
	text := strings.Repeat("Calificación de riesgo otorgada por la agencia. ", 30)

	chunks := c.Chunk(text)
	joined := strings.Join(chunks, "")
	// Overlap duplicates text, so the join is at least as long as the
	// input minus trimmed whitespace.
	assert.GreaterOrEqual(t, len(joined), len(strings.TrimSpace(text))-len(chunks)*2)
}
