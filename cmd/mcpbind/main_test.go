package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateAllDisabledIsNoOp(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `{
		"mcpServers": {
			"off":  {"command": "unused", "disabled": true},
			"off2": {"command": "unused", "disabled": true}
		}
	}`)

	err := run([]string{"generate", "-config", path, "-out", t.TempDir()})
	assert.NoError(t, err)
}

func TestGenerateAllServersFailing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `{
		"mcpServers": {
			"broken": {"command": "mcpbind-no-such-binary"}
		}
	}`)

	err := run([]string{"generate", "-config", path, "-out", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no servers generated")
}

func TestRunUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "frobnicate"`)
}
