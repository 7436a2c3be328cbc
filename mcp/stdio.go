package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StdioServer exposes the same search and fetch tools over stdio for
// MCP clients that spawn the server as a subprocess.
type StdioServer struct {
	mcpServer *server.MCPServer
	svc       ToolInvoker
}

func NewStdioServer(svc ToolInvoker, name, version string) *StdioServer {
	s := &StdioServer{svc: svc}

	s.mcpServer = server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)

	searchTool := mcpgo.NewTool("search",
		mcpgo.WithDescription("Semantic search over the document index. Returns scored results with id, title, snippet, and source."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("Natural language search query"),
		),
		mcpgo.WithNumber("top_k",
			mcpgo.Description("Number of results to return (1-25, default: 8)"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	fetchTool := mcpgo.NewTool("fetch",
		mcpgo.WithDescription("Fetch full documents by id. Returns content and metadata for each object found."),
		mcpgo.WithArray("object_ids",
			mcpgo.Required(),
			mcpgo.Description("Document ids to fetch (1-50)"),
		),
	)
	s.mcpServer.AddTool(fetchTool, s.handleFetch)

	return s
}

func (s *StdioServer) handleSearch(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query := request.GetString("query", "")

	var topK *int
	if raw, ok := request.GetArguments()["top_k"].(float64); ok {
		k := int(raw)
		topK = &k
	}

	page := s.svc.Search(ctx, query, topK)
	text, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("Error executing tool: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(text)), nil
}

func (s *StdioServer) handleFetch(ctx context.Context, request mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	objectIDs, _ := request.GetArguments()["object_ids"].([]any)
	if objectIDs == nil {
		objectIDs = []any{}
	}

	page := s.svc.Fetch(ctx, objectIDs)
	text, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return mcpgo.NewToolResultError(fmt.Sprintf("Error executing tool: %v", err)), nil
	}
	return mcpgo.NewToolResultText(string(text)), nil
}

// Serve starts the stdio transport and blocks until the client closes
// the stream.
func (s *StdioServer) Serve() error {
	return server.ServeStdio(s.mcpServer)
}
