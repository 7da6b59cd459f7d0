// Package toolprovider binds tools served by an external MCP server into a
// tools.Registry.
package toolprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mathtutor/tools"
)

const (
	stdioScheme = "stdio://"
	sseScheme   = "sse://"
)

// Client is a connected MCP client session.
type Client struct {
	session *mcp.ClientSession
}

// Connect dials the tool server described by spec:
//
//	http://host:port/mcp    streamable HTTP
//	sse://host:port/sse     server-sent events over HTTP
//	stdio://command args    subprocess speaking over stdin/stdout
func Connect(ctx context.Context, spec, version string) (*Client, error) {
	t, err := newTransport(spec)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, t, version)
}

// NewClient runs the MCP handshake over t.
func NewClient(ctx context.Context, t mcp.Transport, version string) (*Client, error) {
	impl := mcp.NewClient(&mcp.Implementation{Name: "mathtutor", Version: version}, nil)
	session, err := impl.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connect tool provider: %w", err)
	}
	return &Client{session: session}, nil
}

func (c *Client) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// Populate lists the remote tools and registers each in reg. It returns how
// many were registered.
func (c *Client) Populate(ctx context.Context, reg *tools.Registry) (int, error) {
	var defs []tools.ToolDefinition
	for t, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return 0, fmt.Errorf("list tools: %w", err)
		}
		schema, err := toInputSchema(t.InputSchema)
		if err != nil {
			return 0, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		defs = append(defs, tools.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
			Function:    c.call(t.Name),
		})
	}
	for i, def := range defs {
		if err := reg.Register(def); err != nil {
			return i, err
		}
	}
	return len(defs), nil
}

// call returns a tool function forwarding to the remote tool. Error results
// are returned as text like any other output.
func (c *Client) call(name string) tools.Func {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: input})
		if err != nil {
			return "", fmt.Errorf("call %s: %w", name, err)
		}
		var b strings.Builder
		for _, content := range res.Content {
			if tc, ok := content.(*mcp.TextContent); ok {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(tc.Text)
			}
		}
		return b.String(), nil
	}
}

func toInputSchema(s any) (anthropic.ToolInputSchemaParam, error) {
	var out struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	b, err := json.Marshal(s)
	if err != nil {
		return anthropic.ToolInputSchemaParam{}, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return anthropic.ToolInputSchemaParam{}, fmt.Errorf("input schema is not an object: %w", err)
	}
	return anthropic.ToolInputSchemaParam{Properties: out.Properties, Required: out.Required}, nil
}

func newTransport(spec string) (mcp.Transport, error) {
	spec = strings.TrimSpace(spec)
	lowered := strings.ToLower(spec)
	switch {
	case spec == "":
		return nil, fmt.Errorf("tool provider spec is empty")
	case strings.HasPrefix(lowered, stdioScheme):
		parts := strings.Fields(spec[len(stdioScheme):])
		if len(parts) == 0 {
			return nil, fmt.Errorf("stdio command is empty")
		}
		return &mcp.CommandTransport{Command: exec.Command(parts[0], parts[1:]...)}, nil
	case strings.HasPrefix(lowered, sseScheme):
		endpoint, err := httpURL("http://" + spec[len(sseScheme):])
		if err != nil {
			return nil, err
		}
		return &mcp.SSEClientTransport{Endpoint: endpoint}, nil
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		endpoint, err := httpURL(spec)
		if err != nil {
			return nil, err
		}
		return &mcp.StreamableClientTransport{Endpoint: endpoint}, nil
	}
	return nil, fmt.Errorf("unsupported tool provider %q", spec)
}

func httpURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: missing host", raw)
	}
	return u.String(), nil
}
