// Package retrieve maps raw vector store output to the document shapes
// served by the retrieval tools: scored results with display snippets,
// and full documents with bounded content.
package retrieve

import (
	"context"
	"fmt"

	"github.com/avelinec/docdex/store"
	"github.com/avelinec/docdex/textutil"
)

// SearchResult is a scored hit with display fields derived from the
// record's metadata.
type SearchResult struct {
	ID      string  `json:"id"`
	Score   float32 `json:"score"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// Document is a fully fetched object. Metadata carries a "truncated"
// flag reporting whether Content was cut to the configured budget.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Gateway wraps a vector store and owns the metadata-to-result mapping.
type Gateway struct {
	store           store.VectorStore
	textKeys        []string
	maxContentChars int
}

func NewGateway(st store.VectorStore, textKeys []string, maxContentChars int) *Gateway {
	return &Gateway{
		store:           st,
		textKeys:        textKeys,
		maxContentChars: maxContentChars,
	}
}

// Query runs a similarity search and shapes each match into a
// SearchResult. Scores are forwarded untouched.
func (g *Gateway) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	matches, err := g.store.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval query failed: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		result := SearchResult{
			ID:    m.ID,
			Score: m.Score,
		}
		if title, ok := m.Metadata["title"].(string); ok {
			result.Title = title
		}
		if source, ok := m.Metadata["source"].(string); ok {
			result.Source = source
		}
		if text := textutil.ExtractText(m.Metadata, g.textKeys); text != nil {
			result.Snippet = textutil.Snippet(*text, textutil.DefaultSnippetLength)
		}
		results = append(results, result)
	}

	return results, nil
}

// Fetch retrieves documents by id. Content comes from the first
// configured text key and is truncated to the content budget; the
// returned metadata is a copy of the record's with a "truncated" flag
// added, leaving the source record untouched.
func (g *Gateway) Fetch(ctx context.Context, ids []string) ([]Document, error) {
	records, err := g.store.Fetch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("retrieval fetch failed: %w", err)
	}

	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		content := ""
		truncated := false
		if text := textutil.ExtractText(rec.Metadata, g.textKeys); text != nil {
			content, truncated = textutil.Truncate(*text, g.maxContentChars)
		}

		metadata := make(map[string]any, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			metadata[k] = v
		}
		metadata["truncated"] = truncated

		docs = append(docs, Document{
			ID:       rec.ID,
			Content:  content,
			Metadata: metadata,
		})
	}

	return docs, nil
}
