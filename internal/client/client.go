// Package client wraps MCP server connections behind the descriptor and
// invocation surface the generator consumes.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okeefe/mcpbind/internal/codegen"
	"github.com/okeefe/mcpbind/internal/config"
)

// Client wraps one MCP server connection. Tools are fetched once at connect
// time; regeneration reconnects rather than refreshing in place.
type Client struct {
	name    string
	session *mcp.ClientSession
	tools   []*mcp.Tool
	capture *schemaCapture
}

// New connects to a server described by its registry entry.
func New(ctx context.Context, name string, cfg config.ServerConfig) (*Client, error) {
	var transport mcp.Transport
	var err error

	switch cfg.Transport() {
	case "stdio":
		transport, err = stdioTransport(cfg)
	case "http":
		transport, err = httpTransport(cfg)
	case "sse":
		transport, err = sseTransport(cfg)
	default:
		return nil, fmt.Errorf("client: server %q: unsupported transport type %q", name, cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("client: server %q: create transport: %w", name, err)
	}

	// The streamable HTTP connection coordinates session state with its
	// transport through an unexported SDK interface a decorator cannot
	// forward, so it connects undecorated; schema property ordering for
	// http servers falls back to the SDK's decoded value.
	if cfg.Transport() == "http" {
		return connectSession(ctx, name, transport, nil)
	}

	return NewFromTransport(ctx, name, transport)
}

// NewFromTransport connects over an already-built transport, decorated so
// tools/list responses keep their raw schema bytes. Used by New and by
// tests running against in-memory servers.
func NewFromTransport(ctx context.Context, name string, transport mcp.Transport) (*Client, error) {
	capture := newSchemaCapture()
	return connectSession(ctx, name, &captureTransport{inner: transport, capture: capture}, capture)
}

func connectSession(ctx context.Context, name string, transport mcp.Transport, capture *schemaCapture) (*Client, error) {
	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "mcpbind",
		Version: "1.0.0",
	}, nil)

	session, err := mcpClient.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("client: server %q: connect: %w", name, err)
	}

	toolsResult, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("client: server %q: list tools: %w", name, err)
	}

	return &Client{
		name:    name,
		session: session,
		tools:   toolsResult.Tools,
		capture: capture,
	}, nil
}

func stdioTransport(cfg config.ServerConfig) (mcp.Transport, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)

	if cfg.Cwd != "" {
		cmd.Dir = cfg.Cwd
	}

	if len(cfg.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	return &mcp.CommandTransport{Command: cmd}, nil
}

// headerRoundTripper injects the registry entry's headers into every
// outgoing request.
type headerRoundTripper struct {
	headers map[string]string
	next    http.RoundTripper
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range rt.headers {
		req.Header.Set(k, v)
	}
	return rt.next.RoundTrip(req)
}

func headerClient(headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return nil
	}
	return &http.Client{
		Transport: &headerRoundTripper{headers: headers, next: http.DefaultTransport},
	}
}

func httpTransport(cfg config.ServerConfig) (mcp.Transport, error) {
	return &mcp.StreamableClientTransport{
		Endpoint:   cfg.URL,
		HTTPClient: headerClient(cfg.Headers),
		MaxRetries: 0,
	}, nil
}

func sseTransport(cfg config.ServerConfig) (mcp.Transport, error) {
	return &mcp.SSEClientTransport{
		Endpoint:   cfg.URL,
		HTTPClient: headerClient(cfg.Headers),
	}, nil
}

// Name returns the registry name this client connected as.
func (c *Client) Name() string {
	return c.name
}

// Tools returns the server's tools as generator descriptors. Each input
// schema travels as the raw bytes captured off the wire, so property
// declaration order survives; the SDK's decoded value (a Go map, which
// re-sorts keys) is only a fallback.
func (c *Client) Tools() ([]codegen.ToolDescriptor, error) {
	descriptors := make([]codegen.ToolDescriptor, 0, len(c.tools))
	for _, tool := range c.tools {
		raw, ok := c.capture.Schema(tool.Name)
		if !ok && tool.InputSchema != nil {
			data, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("client: server %q: marshal schema for %q: %w", c.name, tool.Name, err)
			}
			raw = data
		}
		descriptors = append(descriptors, codegen.ToolDescriptor{
			ServerName:  c.name,
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: raw,
		})
	}
	return descriptors, nil
}

// CallTool invokes a tool on this server.
func (c *Client) CallTool(ctx context.Context, toolName string, args map[string]any) (*mcp.CallToolResult, error) {
	return c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
}

// Close terminates the session. For stdio servers the SDK tears down the
// subprocess as part of closing the session.
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}
