package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DecodeResult turns a CallToolResult into a plain value. Text content that
// parses as JSON becomes the parsed value, anything else stays a string.
// An error-flagged result becomes a Go error carrying the text.
func DecodeResult(result *mcp.CallToolResult) (any, error) {
	text := extractText(result)

	if result.IsError {
		return nil, fmt.Errorf("client: tool error: %s", text)
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed, nil
		}
	}

	return text, nil
}

// UnwrapValue strips a single-level result envelope: a mapping carrying a
// "value" key yields that value, anything else passes through. Mirrors the
// unwrapResult helper in the generated runtime.
func UnwrapValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, present := m["value"]; present {
			return inner
		}
	}
	return v
}

func extractText(result *mcp.CallToolResult) string {
	var texts []string
	for _, item := range result.Content {
		if tc, ok := item.(*mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	return strings.Join(texts, "\n")
}
