// Package tools implements the search and fetch retrieval tools. The
// service layer never surfaces errors to callers: invalid input and
// backend failures both degrade to empty result pages, so a tool call
// always produces a well-formed envelope.
package tools

import (
	"context"
	"log"
	"strings"

	"github.com/avelinec/docdex/retrieve"
	"github.com/avelinec/docdex/textutil"
)

const (
	// TopK bounds accepted from callers. Anything outside is replaced
	// wholesale with the configured default, not clamped.
	MinTopK = 1
	MaxTopK = 25

	// Fetch request size bounds. A request outside these is rejected
	// as a whole.
	MinFetchIDs = 1
	MaxFetchIDs = 50
)

// Embedder is the subset of the embedding provider used by the tools.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Gateway is the subset of the retrieval gateway used by the tools.
type Gateway interface {
	Query(ctx context.Context, vector []float32, topK int) ([]retrieve.SearchResult, error)
	Fetch(ctx context.Context, ids []string) ([]retrieve.Document, error)
}

// SearchPage is the envelope returned by the search tool.
type SearchPage struct {
	Results []retrieve.SearchResult `json:"results"`
}

// FetchPage is the envelope returned by the fetch tool.
type FetchPage struct {
	Objects []retrieve.Document `json:"objects"`
}

// Service executes tool calls against the embedder and gateway.
type Service struct {
	embedder    Embedder
	gateway     Gateway
	defaultTopK int
}

func NewService(emb Embedder, gw Gateway, defaultTopK int) *Service {
	if defaultTopK < MinTopK || defaultTopK > MaxTopK {
		defaultTopK = 8
	}
	return &Service{
		embedder:    emb,
		gateway:     gw,
		defaultTopK: defaultTopK,
	}
}

// Search embeds the query and runs a similarity search. A blank query,
// an out-of-range topK, or any collaborator failure yields an empty
// page; the caller always gets a usable envelope.
func (s *Service) Search(ctx context.Context, query string, topK *int) (page SearchPage) {
	page = SearchPage{Results: []retrieve.SearchResult{}}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("search: recovered from panic: %v", r)
			page = SearchPage{Results: []retrieve.SearchResult{}}
		}
	}()

	if strings.TrimSpace(query) == "" {
		return page
	}

	cleaned := textutil.CleanText(query)
	if cleaned == "" {
		return page
	}

	k := s.defaultTopK
	if topK != nil && *topK >= MinTopK && *topK <= MaxTopK {
		k = *topK
	}

	vector, err := s.embedder.Embed(ctx, cleaned)
	if err != nil {
		log.Printf("search: embedding failed: %v", err)
		return page
	}

	results, err := s.gateway.Query(ctx, vector, k)
	if err != nil {
		log.Printf("search: %v", err)
		return page
	}
	if results == nil {
		results = []retrieve.SearchResult{}
	}

	page.Results = results
	return page
}

// Fetch retrieves documents by id. The raw id list may contain nulls
// and blanks (clients pass JSON arrays through as-is); those entries
// are dropped and the survivors trimmed before hitting the store. A
// request whose total count is out of range is rejected whole.
func (s *Service) Fetch(ctx context.Context, objectIDs []any) (page FetchPage) {
	page = FetchPage{Objects: []retrieve.Document{}}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fetch: recovered from panic: %v", r)
			page = FetchPage{Objects: []retrieve.Document{}}
		}
	}()

	if len(objectIDs) < MinFetchIDs || len(objectIDs) > MaxFetchIDs {
		return page
	}

	ids := make([]string, 0, len(objectIDs))
	for _, raw := range objectIDs {
		id, ok := raw.(string)
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return page
	}

	docs, err := s.gateway.Fetch(ctx, ids)
	if err != nil {
		log.Printf("fetch: %v", err)
		return page
	}
	if docs == nil {
		docs = []retrieve.Document{}
	}

	page.Objects = docs
	return page
}
