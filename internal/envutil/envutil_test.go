package envutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Setenv("MCPBIND_TEST_TOKEN", "secret")
	t.Setenv("MCPBIND_TEST_EMPTY", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", `{"token":"${MCPBIND_TEST_TOKEN}"}`, `{"token":"secret"}`},
		{"set variable ignores default", "${MCPBIND_TEST_TOKEN:-fallback}", "secret"},
		{"empty set variable wins over default", "${MCPBIND_TEST_EMPTY:-fallback}", ""},
		{"unset with default", "${MCPBIND_TEST_UNSET:-fallback}", "fallback"},
		{"unset with empty default", "${MCPBIND_TEST_UNSET:-}", ""},
		{"unset without default becomes empty", "a:${MCPBIND_TEST_UNSET}:b", "a::b"},
		{"multiple references", "${MCPBIND_TEST_TOKEN}/${MCPBIND_TEST_UNSET:-x}", "secret/x"},
		{"no references", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Expand([]byte(tt.in))))
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, resolved, gotResolved)
}

func TestFindProjectRootMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := FindProjectRoot(dir)
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".mcpbind"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".mcpbind", ".env"),
		[]byte("MCPBIND_TEST_GLOBAL=from_global\nMCPBIND_TEST_SHARED=from_global\n"), 0o644))

	project := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(project, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, ".env"),
		[]byte("MCPBIND_TEST_PROJECT=from_project\nMCPBIND_TEST_SHARED=from_project\n"), 0o644))

	t.Setenv("MCPBIND_TEST_PRESET", "already_set")
	t.Cleanup(func() {
		os.Unsetenv("MCPBIND_TEST_GLOBAL")
		os.Unsetenv("MCPBIND_TEST_PROJECT")
		os.Unsetenv("MCPBIND_TEST_SHARED")
	})
	os.Unsetenv("MCPBIND_TEST_SHARED")

	LoadDotenv(project)

	assert.Equal(t, "from_global", os.Getenv("MCPBIND_TEST_GLOBAL"))
	assert.Equal(t, "from_project", os.Getenv("MCPBIND_TEST_PROJECT"))
	// Global loads first and godotenv never overrides.
	assert.Equal(t, "from_global", os.Getenv("MCPBIND_TEST_SHARED"))
	assert.Equal(t, "already_set", os.Getenv("MCPBIND_TEST_PRESET"))
}
