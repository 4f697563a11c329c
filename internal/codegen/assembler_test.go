package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okeefe/mcpbind/internal/normalize"
)

func TestWriteServer(t *testing.T) {
	dir := t.TempDir()
	a := &Assembler{OutDir: dir, Rules: &normalize.Rules{}}

	tools := []ToolDescriptor{
		{
			ServerName:  "git",
			Name:        "git-status",
			Description: "Show working tree status",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"repo":{"type":"string"}},"required":["repo"]}`),
		},
		{
			ServerName: "git",
			Name:       "git-log",
		},
	}

	n, err := a.WriteServer("git", tools)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	status, err := os.ReadFile(filepath.Join(dir, "git", "git_status.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(status), "export interface GitStatusParams {")
	assert.Contains(t, string(status), "  repo: string;")
	assert.Contains(t, string(status), `callTool("git__git-status"`)

	// No schema degrades to a no-params wrapper.
	log, err := os.ReadFile(filepath.Join(dir, "git", "git_log.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "params: GitLogParams = {}")

	index, err := os.ReadFile(filepath.Join(dir, "git", "index.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `export { git_status } from "./git_status";`)
	assert.Contains(t, string(index), `export { git_log } from "./git_log";`)

	catalog, err := os.ReadFile(filepath.Join(dir, "git", "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(catalog), "| `git-status` | Show working tree status |")
}

func TestWriteServerMalformedSchemaDegrades(t *testing.T) {
	dir := t.TempDir()
	a := &Assembler{OutDir: dir, Rules: &normalize.Rules{}}

	n, err := a.WriteServer("s", []ToolDescriptor{
		{ServerName: "s", Name: "broken", InputSchema: json.RawMessage(`{not json`)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out, err := os.ReadFile(filepath.Join(dir, "s", "broken.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "params: BrokenParams = {}")
}

func TestWriteServerSanitizeCollision(t *testing.T) {
	dir := t.TempDir()
	a := &Assembler{OutDir: dir, Rules: &normalize.Rules{}}

	_, err := a.WriteServer("fs", []ToolDescriptor{
		{ServerName: "fs", Name: "read-file"},
		{ServerName: "fs", Name: "read.file"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read_file")

	// Collision is detected before anything is written.
	_, statErr := os.Stat(filepath.Join(dir, "fs"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteServerOverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	a := &Assembler{OutDir: dir, Rules: &normalize.Rules{}}

	_, err := a.WriteServer("api", []ToolDescriptor{
		{ServerName: "api", Name: "ping", Description: "old description"},
	})
	require.NoError(t, err)

	_, err = a.WriteServer("api", []ToolDescriptor{
		{ServerName: "api", Name: "ping", Description: "new description"},
	})
	require.NoError(t, err)

	catalog, err := os.ReadFile(filepath.Join(dir, "api", "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(catalog), "new description")
	assert.NotContains(t, string(catalog), "old description")
}

func TestWriteShared(t *testing.T) {
	dir := t.TempDir()
	a := &Assembler{OutDir: dir, Rules: &normalize.Rules{
		Servers: map[string]normalize.ServerRules{"api": {Style: normalize.StyleCamel}},
	}}

	require.NoError(t, a.WriteShared([]string{"api", "git"}))

	runtime, err := os.ReadFile(filepath.Join(dir, "runtime.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(runtime), `{"api":"camel"}`)

	index, err := os.ReadFile(filepath.Join(dir, "index.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `export * as api from "./api";`)
	assert.Contains(t, string(index), `export * as git from "./git";`)
}
