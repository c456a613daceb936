package driven

import "context"

// EmbeddingService generates vector embeddings from text. Repeated
// calls on identical text are assumed to yield vectors that remain
// close under cosine similarity.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// LLMService produces text completions. Responses that are expected to
// be JSON must still be validated by the caller; the service gives no
// format guarantee.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string
}

// TextExtractor turns a source document location into plain text.
// PDF download and parsing live behind this boundary.
type TextExtractor interface {
	// Extract fetches the document at url and returns its text.
	Extract(ctx context.Context, url string) (string, error)
}
