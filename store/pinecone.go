package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// PineconeStore talks to a serverless Pinecone index over its REST data
// plane. Only the read operations are implemented: the index is populated
// by a separate ingestion pipeline.
type PineconeStore struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

type pineconeQueryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
	Namespace       string    `json:"namespace,omitempty"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float32        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

type pineconeFetchResponse struct {
	Vectors map[string]struct {
		ID       string         `json:"id"`
		Metadata map[string]any `json:"metadata"`
	} `json:"vectors"`
}

// NewPineconeStore creates a store for the index at host. The API key
// falls back to the PINECONE_API_KEY environment variable.
func NewPineconeStore(host, apiKey, namespace string) (*PineconeStore, error) {
	if apiKey == "" {
		apiKey = os.Getenv("PINECONE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key not set (use PINECONE_API_KEY environment variable)")
	}
	if host == "" {
		return nil, fmt.Errorf("pinecone index host not set")
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	return &PineconeStore{
		host:      strings.TrimSuffix(host, "/"),
		apiKey:    apiKey,
		namespace: namespace,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (s *PineconeStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	reqBody := pineconeQueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		IncludeValues:   false,
		Namespace:       s.namespace,
	}

	var result pineconeQueryResponse
	if err := s.post(ctx, "/query", reqBody, &result); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	matches := make([]Match, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}

	return matches, nil
}

func (s *PineconeStore) Fetch(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	for _, id := range ids {
		params.Add("ids", id)
	}
	if s.namespace != "" {
		params.Set("namespace", s.namespace)
	}

	var result pineconeFetchResponse
	if err := s.get(ctx, "/vectors/fetch?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("pinecone fetch failed: %w", err)
	}

	// The API returns a map keyed by id; order by the requested ids so
	// callers see deterministic output.
	records := make([]Record, 0, len(result.Vectors))
	for _, id := range ids {
		v, ok := result.Vectors[id]
		if !ok {
			continue
		}
		records = append(records, Record{
			ID:       id,
			Metadata: v.Metadata,
		})
	}

	return records, nil
}

func (s *PineconeStore) Close() error {
	return nil
}

func (s *PineconeStore) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	return s.do(req, out)
}

func (s *PineconeStore) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.host+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", s.apiKey)

	return s.do(req, out)
}

func (s *PineconeStore) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to pinecone: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
