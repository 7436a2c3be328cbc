// Package embedder turns query text into vectors using a configured
// embedding provider.
package embedder

import "context"

// Embedder defines the interface for embedding providers.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple texts,
	// preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of produced vectors.
	Dimensions() int

	// Close releases any resources held by the embedder.
	Close() error
}
