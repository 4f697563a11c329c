package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
		"mcpServers": {
			"git": {"command": "uvx", "args": ["mcp-server-git"]},
			"api": {"type": "http", "url": "https://api.example.com/mcp", "headers": {"X-Key": "k"}},
			"old": {"type": "sse", "url": "https://old.example.com/sse", "disabled": true}
		}
	}`)

	reg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reg.McpServers, 3)

	git := reg.McpServers["git"]
	assert.Equal(t, "stdio", git.Transport())
	assert.Equal(t, "uvx", git.Command)

	api := reg.McpServers["api"]
	assert.Equal(t, "http", api.Transport())
	assert.Equal(t, "k", api.Headers["X-Key"])

	assert.True(t, reg.McpServers["old"].Disabled)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MCPBIND_TEST_KEY", "secret")

	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
		"mcpServers": {
			"api": {
				"type": "http",
				"url": "${MCPBIND_TEST_URL:-https://fallback.example.com}",
				"headers": {"Authorization": "Bearer ${MCPBIND_TEST_KEY}"}
			}
		}
	}`)

	reg, err := Load(path)
	require.NoError(t, err)
	api := reg.McpServers["api"]
	assert.Equal(t, "https://fallback.example.com", api.URL)
	assert.Equal(t, "Bearer secret", api.Headers["Authorization"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		reg     Registry
		wantErr string
	}{
		{
			name:    "empty registry",
			reg:     Registry{},
			wantErr: "no MCP servers configured",
		},
		{
			name: "stdio without command",
			reg: Registry{McpServers: map[string]ServerConfig{
				"s": {Type: "stdio"},
			}},
			wantErr: "command is required",
		},
		{
			name: "http without url",
			reg: Registry{McpServers: map[string]ServerConfig{
				"s": {Type: "http"},
			}},
			wantErr: "url is required",
		},
		{
			name: "sse without url",
			reg: Registry{McpServers: map[string]ServerConfig{
				"s": {Type: "sse"},
			}},
			wantErr: "url is required",
		},
		{
			name: "unknown type passes validation",
			reg: Registry{McpServers: map[string]ServerConfig{
				"s": {Type: "websocket", URL: "wss://example.com"},
			}},
		},
		{
			name: "valid stdio",
			reg: Registry{McpServers: map[string]ServerConfig{
				"s": {Command: "npx"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMergeRightBias(t *testing.T) {
	base := &Registry{McpServers: map[string]ServerConfig{
		"git":    {Command: "uvx", Args: []string{"mcp-server-git"}},
		"shared": {Command: "global-cmd", Env: map[string]string{"FROM": "global"}},
	}}
	overlay := &Registry{McpServers: map[string]ServerConfig{
		"shared": {Command: "project-cmd"},
		"local":  {Command: "project-tool"},
	}}

	merged := Merge(base, overlay)
	require.Len(t, merged.McpServers, 3)

	// Overlay replaces the whole entry, not individual fields.
	shared := merged.McpServers["shared"]
	assert.Equal(t, "project-cmd", shared.Command)
	assert.Nil(t, shared.Env)

	assert.Equal(t, "uvx", merged.McpServers["git"].Command)
	assert.Equal(t, "project-tool", merged.McpServers["local"].Command)
}

func TestMergeNilSides(t *testing.T) {
	reg := &Registry{McpServers: map[string]ServerConfig{"s": {Command: "c"}}}

	assert.Len(t, Merge(nil, reg).McpServers, 1)
	assert.Len(t, Merge(reg, nil).McpServers, 1)
	assert.Empty(t, Merge(nil, nil).McpServers)
}

func TestDiscoverExplicitPathWins(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".mcpbind", "config.json"),
		`{"mcpServers": {"global": {"command": "g"}}}`)

	explicit := filepath.Join(t.TempDir(), "explicit.json")
	writeFile(t, explicit, `{"mcpServers": {"only": {"command": "o"}}}`)

	reg, err := Discover(explicit, t.TempDir())
	require.NoError(t, err)
	require.Len(t, reg.McpServers, 1)
	assert.Contains(t, reg.McpServers, "only")
}

func TestDiscoverMergesGlobalAndProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".mcpbind", "config.json"),
		`{"mcpServers": {"global": {"command": "g"}, "shared": {"command": "global-cmd"}}}`)

	project := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(project, ".git"), 0o755))
	writeFile(t, filepath.Join(project, ".mcp.json"),
		`{"mcpServers": {"shared": {"command": "project-cmd"}, "local": {"command": "l"}}}`)

	reg, err := Discover("", project)
	require.NoError(t, err)
	require.Len(t, reg.McpServers, 3)
	assert.Equal(t, "project-cmd", reg.McpServers["shared"].Command)
}

func TestDiscoverProjectFileFallbackName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	project := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(project, ".git"), 0o755))
	writeFile(t, filepath.Join(project, "mcp_config.json"),
		`{"mcpServers": {"s": {"command": "c"}}}`)

	reg, err := Discover("", project)
	require.NoError(t, err)
	assert.Contains(t, reg.McpServers, "s")
}

func TestDiscoverNothingFound(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := Discover("", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registry found")
}
