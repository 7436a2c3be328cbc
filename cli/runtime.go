package cli

import (
	"context"
	"fmt"

	"github.com/avelinec/docdex/config"
	"github.com/avelinec/docdex/embedder"
	"github.com/avelinec/docdex/retrieve"
	"github.com/avelinec/docdex/store"
	"github.com/avelinec/docdex/tools"
)

// buildService wires the embedder, store, and gateway into a tool
// service. The returned cleanup closes both backends.
func buildService(ctx context.Context, cfg *config.Config) (*tools.Service, func(), error) {
	emb, err := embedder.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	st, err := store.NewFromConfig(ctx, cfg)
	if err != nil {
		emb.Close()
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	gw := retrieve.NewGateway(st, cfg.Search.TextKeys, cfg.Search.MaxContentChars)
	svc := tools.NewService(emb, gw, cfg.Search.DefaultTopK)

	cleanup := func() {
		st.Close()
		emb.Close()
	}
	return svc, cleanup, nil
}
