package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const (
	sessionHeader  = "Mcp-Session-Id"
	maxRequestSize = 10 << 20 // 10 MB
)

// Handler returns the HTTP surface of the adapter: the direct and
// streamed MCP endpoints plus health and metrics.
func (s *Server) Handler(metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /mcp", s.requireAuth(http.HandlerFunc(s.handleDirect)))
	mux.Handle("POST /mcp/sse", s.requireAuth(http.HandlerFunc(s.handleStreamed)))
	mux.HandleFunc("GET /health", s.handleHealth)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var handler http.Handler = mux
	if s.enableCORS {
		handler = corsMiddleware(handler)
	}
	return handler
}

// handleDirect serves the single-payload delivery mode: one JSON body
// in, one JSON payload out (object or array, matching the input shape).
func (s *Server) handleDirect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		writeJSON(w, http.StatusOK, newError(nil, CodeInternalError, "Internal error"))
		return
	}

	out, sessionID := s.Handle(r.Context(), body, r.Header.Get(sessionHeader))
	if sessionID != "" {
		w.Header().Set(sessionHeader, sessionID)
	}

	if out.batch {
		writeJSON(w, http.StatusOK, out.responses)
		return
	}
	if len(out.responses) == 0 {
		// Notification: acknowledged, nothing to say.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, out.responses[0])
}

// handleStreamed serves the SSE delivery mode: every response becomes a
// data event, closed by a done sentinel event. A payload that fails to
// parse at the top level produces a single error event and no sentinel.
func (s *Server) handleStreamed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		http.Error(w, "failed to read request", http.StatusBadRequest)
		return
	}

	out, sessionID := s.Handle(r.Context(), body, r.Header.Get(sessionHeader))
	if sessionID != "" {
		w.Header().Set(sessionHeader, sessionID)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for _, resp := range out.responses {
		data, err := json.Marshal(resp)
		if err != nil {
			log.Printf("sse: failed to marshal response: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	if !out.parseError {
		fmt.Fprint(w, "event: done\ndata: {}\n\n")
		flusher.Flush()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.name,
		"version": s.version,
	})
}

// requireAuth enforces the configured bearer token. No configured token
// means authentication is disabled entirely.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			auth := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token != s.authToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+sessionHeader)
		w.Header().Set("Access-Control-Expose-Headers", sessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: failed to write response: %v", err)
	}
}
