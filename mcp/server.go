// Package mcp implements the MCP protocol adapter for docdex: a
// JSON-RPC 2.0 dispatcher over the retrieval tools, delivered either as
// direct HTTP responses, as SSE streams, or over stdio.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelinec/docdex/metrics"
	"github.com/avelinec/docdex/tools"
)

// ToolInvoker is the tool execution surface the adapter dispatches to.
type ToolInvoker interface {
	Search(ctx context.Context, query string, topK *int) tools.SearchPage
	Fetch(ctx context.Context, objectIDs []any) tools.FetchPage
}

// Options configures a Server.
type Options struct {
	Name       string
	Version    string
	AuthToken  string // empty disables authentication entirely
	EnableCORS bool
}

// Server is the protocol adapter. All delivery modes share its dispatch
// logic.
type Server struct {
	svc        ToolInvoker
	sessions   *SessionStore
	name       string
	version    string
	authToken  string
	enableCORS bool
}

func NewServer(svc ToolInvoker, sessions *SessionStore, opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "docdex"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &Server{
		svc:        svc,
		sessions:   sessions,
		name:       opts.Name,
		version:    opts.Version,
		authToken:  opts.AuthToken,
		enableCORS: opts.EnableCORS,
	}
}

// outcome is what one HTTP payload produced: the responses to deliver
// and how the payload parsed. Both delivery modes render from this.
type outcome struct {
	responses  []Response
	batch      bool
	parseError bool
}

// Handle processes a raw JSON-RPC payload (single request or batch) and
// returns the responses plus the session id to report back to the
// client. Batches are processed per element in input order; a malformed
// element fails only its own slot.
func (s *Server) Handle(ctx context.Context, body []byte, sessionID string) (outcome, string) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return outcome{
				responses:  []Response{newError(nil, CodeParseError, "Parse error")},
				parseError: true,
			}, sessionID
		}
		if len(elements) == 0 {
			return outcome{
				responses: []Response{newError(nil, CodeInvalidRequest, "Invalid Request")},
			}, sessionID
		}

		responses := make([]Response, 0, len(elements))
		for _, element := range elements {
			req, errResp := parseRequest(element)
			if errResp != nil {
				responses = append(responses, *errResp)
				continue
			}
			resp, sid := s.dispatch(ctx, req, sessionID)
			sessionID = sid
			if !req.IsNotification() {
				responses = append(responses, resp)
			}
		}
		return outcome{responses: responses, batch: true}, sessionID
	}

	req, errResp := parseRequest(trimmed)
	if errResp != nil {
		if !json.Valid(trimmed) {
			return outcome{
				responses:  []Response{newError(nil, CodeParseError, "Parse error")},
				parseError: true,
			}, sessionID
		}
		return outcome{responses: []Response{*errResp}}, sessionID
	}

	resp, sid := s.dispatch(ctx, req, sessionID)
	if req.IsNotification() {
		return outcome{}, sid
	}
	return outcome{responses: []Response{resp}}, sid
}

// parseRequest validates one envelope. Anything that is not a JSON-RPC
// 2.0 request object gets an Invalid Request error in its slot.
func parseRequest(raw json.RawMessage) (Request, *Response) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		resp := newError(nil, CodeInvalidRequest, "Invalid Request")
		return req, &resp
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		resp := newError(req.ID, CodeInvalidRequest, "Invalid Request")
		return req, &resp
	}
	return req, nil
}

// dispatch routes a single validated request. It returns the response
// and the session id in effect afterwards (initialize may mint one).
func (s *Server) dispatch(ctx context.Context, req Request, sessionID string) (Response, string) {
	metrics.RequestsTotal.WithLabelValues(req.Method).Inc()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req, sessionID)

	case "notifications/initialized":
		return newResult(req.ID, map[string]any{}), sessionID

	case "ping":
		return newResult(req.ID, map[string]any{}), sessionID

	case "tools/list":
		return newResult(req.ID, map[string]any{"tools": toolDescriptors()}), sessionID

	case "tools/call":
		return s.handleToolCall(ctx, req), sessionID

	default:
		return newError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method)), sessionID
	}
}

func (s *Server) handleInitialize(req Request, sessionID string) (Response, string) {
	var params struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
		ClientInfo      map[string]any `json:"clientInfo"`
	}
	// Params are optional; a client sending none still gets a session.
	_ = json.Unmarshal(req.Params, &params)

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.sessions.Put(Session{
		ID:              sessionID,
		ProtocolVersion: params.ProtocolVersion,
		Capabilities:    params.Capabilities,
		ClientInfo:      params.ClientInfo,
	})

	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	}
	return newResult(req.ID, result), sessionID
}

func (s *Server) handleToolCall(ctx context.Context, req Request) Response {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newError(req.ID, CodeInvalidParams, "Invalid params")
	}

	switch params.Name {
	case "search":
		query, _ := params.Arguments["query"].(string)
		var topK *int
		if raw, ok := params.Arguments["top_k"].(float64); ok {
			k := int(raw)
			topK = &k
		}
		page := s.svc.Search(ctx, query, topK)
		return s.renderToolResult(req, "search", page)

	case "fetch":
		objectIDs, _ := params.Arguments["object_ids"].([]any)
		if objectIDs == nil {
			objectIDs = []any{}
		}
		page := s.svc.Fetch(ctx, objectIDs)
		return s.renderToolResult(req, "fetch", page)

	default:
		metrics.ToolCallsTotal.WithLabelValues(params.Name, "unknown").Inc()
		return newError(req.ID, CodeMethodNotFound, fmt.Sprintf("Tool not found: %s", params.Name))
	}
}

// renderToolResult wraps a tool page as an MCP tool result. A failure
// rendering the page stays inside the tool result (isError), never
// escalating to a protocol error.
func (s *Server) renderToolResult(req Request, tool string, page any) Response {
	text, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(tool, "error").Inc()
		return textResult(req.ID, fmt.Sprintf("Error executing tool: %v", err), true)
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, "ok").Inc()
	return textResult(req.ID, string(text), false)
}

// toolDescriptors returns the static tool catalog. The schemas are
// fixed: clients can rely on them not changing between calls.
func toolDescriptors() []Tool {
	return []Tool{
		{
			Name:        "search",
			Description: "Semantic search over the document index. Returns scored results with id, title, snippet, and source.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {
						"type": "string",
						"description": "Natural language search query"
					},
					"top_k": {
						"type": "integer",
						"description": "Number of results to return (1-25)",
						"minimum": 1,
						"maximum": 25,
						"default": 8
					}
				},
				"required": ["query"]
			}`),
		},
		{
			Name:        "fetch",
			Description: "Fetch full documents by id. Returns content and metadata for each object found.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"object_ids": {
						"type": "array",
						"items": {"type": "string"},
						"description": "Document ids to fetch (1-50)",
						"minItems": 1,
						"maxItems": 50
					}
				},
				"required": ["object_ids"]
			}`),
		},
	}
}
