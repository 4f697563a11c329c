package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// The SDK decodes each tool's inputSchema into a Go map, which loses the
// property declaration order the wire bytes carry. schemaCapture snoops the
// JSON-RPC stream for tools/list responses and keeps the raw schema bytes,
// so downstream decoding sees properties in declaration order.
type schemaCapture struct {
	mu      sync.Mutex
	pending map[jsonrpc.ID]bool
	schemas map[string]json.RawMessage
}

func newSchemaCapture() *schemaCapture {
	return &schemaCapture{
		pending: make(map[jsonrpc.ID]bool),
		schemas: make(map[string]json.RawMessage),
	}
}

// Schema returns the captured raw inputSchema bytes for a tool, if any. A
// nil capture (undecorated transport) never has any.
func (sc *schemaCapture) Schema(toolName string) (json.RawMessage, bool) {
	if sc == nil {
		return nil, false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	raw, ok := sc.schemas[toolName]
	return raw, ok
}

func (sc *schemaCapture) noteRequest(req *jsonrpc.Request) {
	if req.Method != "tools/list" || !req.ID.IsValid() {
		return
	}
	sc.mu.Lock()
	sc.pending[req.ID] = true
	sc.mu.Unlock()
}

func (sc *schemaCapture) noteResponse(resp *jsonrpc.Response) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.pending[resp.ID] {
		return
	}
	delete(sc.pending, resp.ID)

	if resp.Error != nil {
		return
	}

	var body struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &body); err != nil {
		return
	}
	for _, tool := range body.Tools {
		sc.schemas[tool.Name] = tool.InputSchema
	}
}

// captureTransport decorates a transport so its connection feeds the
// capture.
type captureTransport struct {
	inner   mcp.Transport
	capture *schemaCapture
}

func (t *captureTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	conn, err := t.inner.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &captureConn{Connection: conn, capture: t.capture}, nil
}

type captureConn struct {
	mcp.Connection
	capture *schemaCapture
}

func (c *captureConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	if req, ok := msg.(*jsonrpc.Request); ok {
		c.capture.noteRequest(req)
	}
	return c.Connection.Write(ctx, msg)
}

func (c *captureConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	msg, err := c.Connection.Read(ctx)
	if err != nil {
		return msg, err
	}
	if resp, ok := msg.(*jsonrpc.Response); ok {
		c.capture.noteResponse(resp)
	}
	return msg, nil
}
