package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/okeefe/mcpbind/internal/config"
)

// Separator joins a server name and tool name into the qualified identifier
// generated wrappers address tools by.
const Separator = "__"

// SplitID splits a qualified "{server}__{tool}" identifier. The split is on
// the first separator, so tool names containing "__" survive.
func SplitID(id string) (server, tool string, err error) {
	server, tool, ok := strings.Cut(id, Separator)
	if !ok || server == "" || tool == "" {
		return "", "", fmt.Errorf("client: malformed tool identifier %q (want \"server__tool\")", id)
	}
	return server, tool, nil
}

// Hub manages connections to multiple MCP servers and dispatches qualified
// tool invocations to the right one.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Connect establishes connections to every enabled server in the registry.
// The first failure aborts and closes anything already connected.
func (h *Hub) Connect(ctx context.Context, reg *config.Registry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, serverCfg := range reg.McpServers {
		if serverCfg.Disabled {
			continue
		}
		c, err := New(ctx, name, serverCfg)
		if err != nil {
			h.closeAllLocked()
			return fmt.Errorf("client: connect to server %q: %w", name, err)
		}
		h.clients[name] = c
	}

	return nil
}

// Add registers an already-connected client under its name.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c.Name()] = c
	h.mu.Unlock()
}

// Invoke calls a tool by its qualified identifier and decodes the result.
func (h *Hub) Invoke(ctx context.Context, id string, args map[string]any) (any, error) {
	server, tool, err := SplitID(id)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	c, ok := h.clients[server]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("client: server %q not connected", server)
	}

	result, err := c.CallTool(ctx, tool, args)
	if err != nil {
		return nil, fmt.Errorf("client: call %s: %w", id, err)
	}

	return DecodeResult(result)
}

// Servers returns connected server names, sorted.
func (h *Hub) Servers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.clients))
	for name := range h.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every connection, collecting all errors.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeAllLocked()
}

func (h *Hub) closeAllLocked() error {
	var errs []error
	for name, c := range h.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("client: close %q: %w", name, err))
		}
		delete(h.clients, name)
	}
	return errors.Join(errs...)
}
