package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOllamaEmbedder_Defaults(t *testing.T) {
	e := NewOllamaEmbedder()

	if e.endpoint != defaultOllamaEndpoint {
		t.Errorf("expected default endpoint, got %q", e.endpoint)
	}
	if e.model != defaultOllamaModel {
		t.Errorf("expected default model, got %q", e.model)
	}
	if e.Dimensions() != ollamaDimensions {
		t.Errorf("expected %d dimensions, got %d", ollamaDimensions, e.Dimensions())
	}
}

func TestNewOllamaEmbedder_Options(t *testing.T) {
	e := NewOllamaEmbedder(
		WithOllamaEndpoint("http://remote:11434"),
		WithOllamaModel("mxbai-embed-large"),
		WithOllamaDimensions(1024),
	)

	if e.endpoint != "http://remote:11434" {
		t.Errorf("expected option endpoint, got %q", e.endpoint)
	}
	if e.model != "mxbai-embed-large" {
		t.Errorf("expected option model, got %q", e.model)
	}
	if e.Dimensions() != 1024 {
		t.Errorf("expected 1024 dimensions, got %d", e.Dimensions())
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if req.Prompt != "hello world" {
			t.Errorf("unexpected prompt: %q", req.Prompt)
		}

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.5, 0.6, 0.7}})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(WithOllamaEndpoint(server.URL))

	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.5 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestOllamaEmbedder_EmbedBatchOrder(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		prompts = append(prompts, req.Prompt)
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(prompts))}})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(WithOllamaEndpoint(server.URL))

	embeddings, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(embeddings))
	}
	if prompts[0] != "a" || prompts[1] != "b" || prompts[2] != "c" {
		t.Errorf("prompts sent out of order: %v", prompts)
	}
	if embeddings[2][0] != 3 {
		t.Errorf("embeddings not aligned with inputs: %v", embeddings)
	}
}

func TestOllamaEmbedder_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(WithOllamaEndpoint(server.URL))

	_, err := e.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for empty embedding")
	}
	if !strings.Contains(err.Error(), "empty embedding") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	e := NewOllamaEmbedder(WithOllamaEndpoint(server.URL))

	_, err := e.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status code in error, got %v", err)
	}
}
