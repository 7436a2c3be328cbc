// Package store provides access to external vector index backends. Each
// backend answers similarity queries and id lookups over documents that
// were indexed elsewhere; this package never writes to the index.
package store

import (
	"context"
	"fmt"

	"github.com/avelinec/docdex/config"
)

// Match is a raw similarity hit as returned by a backend.
type Match struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Record is a raw document as returned by an id lookup.
type Record struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorStore defines the read-side interface for vector index backends.
type VectorStore interface {
	// Query finds the topK most similar records to the query vector.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Fetch retrieves records by id. Unknown ids are skipped, not errors.
	// Results follow the order of the requested ids.
	Fetch(ctx context.Context, ids []string) ([]Record, error)

	// Close cleanly shuts down the backend connection.
	Close() error
}

// NewFromConfig creates a VectorStore based on the configured backend.
// This factory centralizes backend initialization for the CLI commands
// and the server.
func NewFromConfig(ctx context.Context, cfg *config.Config) (VectorStore, error) {
	switch cfg.Store.Backend {
	case "pinecone":
		return NewPineconeStore(
			cfg.Store.Pinecone.Host,
			cfg.Store.Pinecone.APIKey,
			cfg.Store.Namespace,
		)

	case "qdrant":
		return NewQdrantStore(ctx,
			cfg.Store.Qdrant.Endpoint,
			cfg.Store.Qdrant.Port,
			cfg.Store.Qdrant.UseTLS,
			cfg.Store.Qdrant.Collection,
			cfg.Store.Qdrant.APIKey,
			cfg.Store.Namespace,
		)

	case "postgres":
		return NewPostgresStore(ctx,
			cfg.Store.Postgres.DSN,
			cfg.Store.Postgres.Table,
			cfg.Store.Namespace,
		)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Store.Backend)
	}
}
