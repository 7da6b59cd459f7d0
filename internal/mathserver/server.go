// Package mathserver exposes the tools of a registry as an MCP server.
package mathserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/tools"
)

const Name = "mathtutor-tools"

// NewServer returns an MCP server publishing every tool in reg. Tool
// failures are reported as error results carrying a tools.ToolError body.
func NewServer(reg *tools.Registry, version string) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	for _, def := range reg.All() {
		s.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: inputSchema(def),
		}, handler(reg, def.Name))
	}
	return s
}

// Handler serves s over the streamable HTTP transport.
func Handler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s }, nil)
}

func inputSchema(def tools.ToolDefinition) map[string]any {
	var props any = map[string]any{}
	if def.InputSchema.Properties != nil {
		props = def.InputSchema.Properties
	}
	m := map[string]any{"type": "object", "properties": props}
	if len(def.InputSchema.Required) > 0 {
		m["required"] = def.InputSchema.Required
	}
	return m
}

func handler(reg *tools.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := reg.Invoke(ctx, name, req.Params.Arguments)
		if err != nil {
			internal.Logger(ctx).Warn("tool call failed", "tool", name, "err", err)
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: tools.AsToolError(err).Error()}},
			}, nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: out}}}, nil
	}
}
