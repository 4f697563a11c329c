// Package config loads and merges the MCP server registry.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okeefe/mcpbind/internal/envutil"
)

// Registry maps server names to their connection configurations.
type Registry struct {
	McpServers map[string]ServerConfig `json:"mcpServers"`
}

// ServerConfig describes how to reach one MCP server.
type ServerConfig struct {
	Type string `json:"type,omitempty"` // "stdio" (default), "http", or "sse"

	// Stdio fields
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// HTTP/SSE fields
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	Disabled bool `json:"disabled,omitempty"`
}

// Transport returns the effective transport kind; an empty type means stdio.
func (s ServerConfig) Transport() string {
	if s.Type == "" {
		return "stdio"
	}
	return s.Type
}

// Load reads and parses a registry file. ${VAR} references are expanded
// against the environment before parsing.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var reg Registry
	if err := json.Unmarshal(envutil.Expand(data), &reg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &reg, nil
}

// Validate checks structural requirements per transport. An unrecognized
// type passes here; it surfaces as a per-server connection error instead of
// blocking the whole registry.
func (r *Registry) Validate() error {
	if len(r.McpServers) == 0 {
		return fmt.Errorf("no MCP servers configured")
	}

	for name, server := range r.McpServers {
		switch server.Transport() {
		case "stdio":
			if server.Command == "" {
				return fmt.Errorf("server %q: command is required for stdio type", name)
			}
		case "http", "sse":
			if server.URL == "" {
				return fmt.Errorf("server %q: url is required for %s type", name, server.Type)
			}
		}
	}

	return nil
}

// Merge combines two registries. Entries in overlay replace same-named
// entries in base wholesale; there is no per-field merging.
func Merge(base, overlay *Registry) *Registry {
	merged := &Registry{McpServers: make(map[string]ServerConfig)}

	if base != nil {
		for name, server := range base.McpServers {
			merged.McpServers[name] = server
		}
	}
	if overlay != nil {
		for name, server := range overlay.McpServers {
			merged.McpServers[name] = server
		}
	}

	return merged
}

// Project-level registry file names, in lookup order.
var projectFiles = []string{".mcp.json", "mcp_config.json"}

// Discover resolves the effective registry. An explicit path wins outright.
// Otherwise the global registry under ~/.mcpbind merges with the project
// registry found at the repository root, project entries taking precedence.
func Discover(explicitPath, workDir string) (*Registry, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	var global, project *Registry

	if dir, err := envutil.GlobalDir(); err == nil {
		path := filepath.Join(dir, "config.json")
		if _, err := os.Stat(path); err == nil {
			reg, err := Load(path)
			if err != nil {
				return nil, err
			}
			global = reg
		}
	}

	if root, err := envutil.FindProjectRoot(workDir); err == nil {
		for _, name := range projectFiles {
			path := filepath.Join(root, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			reg, err := Load(path)
			if err != nil {
				return nil, err
			}
			project = reg
			break
		}
	}

	if global == nil && project == nil {
		return nil, fmt.Errorf("config: no registry found; create ~/.mcpbind/config.json or a project .mcp.json")
	}

	return Merge(global, project), nil
}
