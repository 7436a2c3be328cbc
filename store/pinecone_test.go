package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPineconeStore_RequiresCredentials(t *testing.T) {
	t.Setenv("PINECONE_API_KEY", "")

	if _, err := NewPineconeStore("https://idx.example.io", "", ""); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewPineconeStore("", "key", ""); err == nil {
		t.Error("expected error without host")
	}
}

func TestNewPineconeStore_UsesEnvAPIKey(t *testing.T) {
	t.Setenv("PINECONE_API_KEY", "env-key")

	s, err := NewPineconeStore("https://idx.example.io", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.apiKey != "env-key" {
		t.Errorf("expected env API key, got %q", s.apiKey)
	}
}

func TestNewPineconeStore_AddsScheme(t *testing.T) {
	s, err := NewPineconeStore("idx.example.io", "key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.host != "https://idx.example.io" {
		t.Errorf("expected https scheme added, got %q", s.host)
	}
}

func TestPineconeStore_Query(t *testing.T) {
	var gotReq pineconeQueryRequest
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAPIKey = r.Header.Get("Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "doc1", "score": 0.93, "metadata": map[string]any{"title": "First"}},
				{"id": "doc2", "score": 0.81},
			},
		})
	}))
	defer server.Close()

	s, err := NewPineconeStore(server.URL, "test-key", "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := s.Query(context.Background(), []float32{0.1, 0.2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAPIKey != "test-key" {
		t.Errorf("expected Api-Key header, got %q", gotAPIKey)
	}
	if gotReq.TopK != 5 || !gotReq.IncludeMetadata || gotReq.IncludeValues {
		t.Errorf("unexpected query request: %+v", gotReq)
	}
	if gotReq.Namespace != "prod" {
		t.Errorf("expected namespace forwarded, got %q", gotReq.Namespace)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "doc1" || matches[0].Score != 0.93 {
		t.Errorf("unexpected match: %+v", matches[0])
	}
	if matches[0].Metadata["title"] != "First" {
		t.Errorf("expected metadata carried, got %v", matches[0].Metadata)
	}
}

func TestPineconeStore_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/fetch" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		ids := r.URL.Query()["ids"]
		if len(ids) != 3 {
			t.Errorf("expected 3 ids in query string, got %v", ids)
		}
		// Respond with a shuffled subset: doc3 missing.
		json.NewEncoder(w).Encode(map[string]any{
			"vectors": map[string]any{
				"doc2": map[string]any{"id": "doc2", "metadata": map[string]any{"text": "two"}},
				"doc1": map[string]any{"id": "doc1", "metadata": map[string]any{"text": "one"}},
			},
		})
	}))
	defer server.Close()

	s, err := NewPineconeStore(server.URL, "test-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := s.Fetch(context.Background(), []string{"doc1", "doc2", "doc3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Requested id order, not map order.
	if records[0].ID != "doc1" || records[1].ID != "doc2" {
		t.Errorf("expected request order preserved, got %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].Metadata["text"] != "one" {
		t.Errorf("unexpected metadata: %v", records[0].Metadata)
	}
}

func TestPineconeStore_FetchEmptyIDs(t *testing.T) {
	s, err := NewPineconeStore("https://idx.example.io", "key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := s.Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestPineconeStore_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	s, err := NewPineconeStore(server.URL, "bad-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Query(context.Background(), []float32{1}, 1); err == nil {
		t.Error("expected error on non-200 response")
	}
	if _, err := s.Fetch(context.Background(), []string{"doc1"}); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestNewFromConfig_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "cassandra"

	if _, err := NewFromConfig(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewFromConfig_Pinecone(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "pinecone"
	cfg.Store.Pinecone.Host = "https://idx.example.io"
	cfg.Store.Pinecone.APIKey = "key"

	st, err := NewFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.(*PineconeStore); !ok {
		t.Errorf("expected *PineconeStore, got %T", st)
	}
}
