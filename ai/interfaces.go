package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a system/user prompt pair. It is a
// synchronous, single-shot contract: one invocation, no streaming, no
// retries. Callers that need structured output enforce it on top of the
// returned text. Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete invokes the generative backend once with the given prompts.
	// Temperature is in [0, 1]; 0 requests deterministic output.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service, or nil when no
	// generative backend is configured. A nil generator degrades hypothesis
	// synthesis to its deterministic fallback; it never aborts a request.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
