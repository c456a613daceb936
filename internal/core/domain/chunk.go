package domain

import "fmt"

// Chunk is a bounded, overlap-aware slice of a document's text, stored
// with a vector embedding for retrieval. Chunks are written once at
// ingestion and never mutated; reprocessing a document replaces them.
type Chunk struct {
	// ID is deterministic: "{issuerID}_{documentID}_chunk{index}".
	ID string

	// IssuerID identifies the issuer the chunk belongs to.
	IssuerID string

	// DocumentID links to the parent document.
	DocumentID string

	// Index is the 0-based ordinal position within the document.
	Index int

	// Text is the chunk content. Always longer than 10 characters and
	// at most the configured chunk size.
	Text string

	// Embedding is the fixed-length vector representation.
	Embedding []float32

	// Metadata carries denormalised document fields for display and
	// ranking without a second store read.
	Metadata ChunkMetadata
}

// ChunkMetadata is the document context stored alongside each chunk.
type ChunkMetadata struct {
	Title        string       `json:"title"`
	DocType      DocumentType `json:"docType"`
	DocumentDate string       `json:"documentDate"`
	IssuerName   string       `json:"issuerName"`
	DocumentURL  string       `json:"documentUrl,omitempty"`
	ProcessedAt  string       `json:"processedAt,omitempty"`
}

// ChunkID builds the deterministic record id for a chunk. Rewrites with
// the same coordinates land on the same record, making ingestion
// idempotent.
func ChunkID(issuerID, documentID string, index int) string {
	return fmt.Sprintf("%s_%s_chunk%d", issuerID, documentID, index)
}

// ScoredChunk is a chunk paired with its query similarity.
type ScoredChunk struct {
	Chunk Chunk `json:"chunk"`

	// Similarity is the cosine similarity to the query embedding.
	Similarity float64 `json:"similarity"`
}
