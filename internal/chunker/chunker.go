// Package chunker splits document text into overlapping, bounded
// chunks suitable for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// minChunkLen is the length below which a fragment is treated as
// decorative noise (stray headers, page numbers) and discarded.
const minChunkLen = 10

// Chunker splits text into sentence-aware overlapping chunks.
type Chunker struct {
	maxSize int
	overlap int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxSize: DefaultChunkSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room to advance.
	if c.overlap >= c.maxSize {
		c.overlap = c.maxSize / 4
	}

	return c
}

// Chunk splits text into ordered chunks of at most the configured size.
// Windows prefer to end on a sentence-terminating period when one falls
// in the back half of the window, so sentences are not cut mid-way.
// Each window starts overlap characters before the previous window's
// end, so adjacent chunks share a span of text. Fragments of 10
// characters or fewer are dropped. The result is deterministic; empty
// input yields nil.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	if len(text) <= c.maxSize {
		if len(strings.TrimSpace(text)) <= minChunkLen {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.maxSize
		last := end >= len(text)

		if last {
			end = len(text)
		} else if cut := strings.LastIndexByte(text[start:end], '.'); cut > c.maxSize/2 {
			// Back up to the nearest sentence boundary, but only
			// within the back half of the window so pathological
			// inputs cannot stall progress.
			end = start + cut + 1
		} else {
			end = runeBoundary(text, end)
		}

		piece := strings.TrimSpace(text[start:end])
		if len(piece) > minChunkLen {
			chunks = append(chunks, piece)
		}

		if last {
			break
		}

		next := runeBoundary(text, end-c.overlap)
		if next <= start {
			_, width := utf8.DecodeRuneInString(text[start:])
			next = start + width
		}
		start = next
	}

	return chunks
}

// runeBoundary backs i up to the start of the rune covering it, so
// byte windows never split a multi-byte character.
func runeBoundary(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
