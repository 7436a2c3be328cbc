package embedder

import (
	"fmt"

	"github.com/avelinec/docdex/config"
)

// NewFromConfig creates an Embedder based on the provided configuration.
// This factory function centralizes provider initialization for the CLI
// commands and the server.
func NewFromConfig(cfg *config.Config) (Embedder, error) {
	switch cfg.Embedder.Provider {
	case "openai":
		opts := []OpenAIOption{
			WithOpenAIModel(cfg.Embedder.Model),
			WithOpenAIKey(cfg.Embedder.APIKey),
			WithOpenAIEndpoint(cfg.Embedder.Endpoint),
		}
		if cfg.Embedder.Dimensions != nil {
			opts = append(opts, WithOpenAIDimensions(*cfg.Embedder.Dimensions))
		}
		return NewOpenAIEmbedder(opts...)

	case "ollama":
		opts := []OllamaOption{
			WithOllamaEndpoint(cfg.Embedder.Endpoint),
			WithOllamaModel(cfg.Embedder.Model),
		}
		if cfg.Embedder.Dimensions != nil {
			opts = append(opts, WithOllamaDimensions(*cfg.Embedder.Dimensions))
		}
		return NewOllamaEmbedder(opts...), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedder.Provider)
	}
}
