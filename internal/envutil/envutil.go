// Package envutil covers the environment plumbing around configuration:
// ${VAR} expansion in registry files, project root discovery, and .env
// bootstrapping.
package envutil

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Expand substitutes ${VAR} and ${VAR:-default} references with values from
// the process environment. An unset variable without a default becomes the
// empty string, same as an unset variable with an empty default.
func Expand(data []byte) []byte {
	return varPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := varPattern.FindSubmatch(match)
		name := string(groups[1])

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return groups[2]
	})
}

// FindProjectRoot walks from dir upward until it finds a directory
// containing .git, which anchors project-level configuration.
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("envutil: resolve %s: %w", dir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(abs, ".git")); err == nil {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("envutil: no project root above %s", dir)
		}
		abs = parent
	}
}

// GlobalDir returns the per-user configuration directory.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("envutil: resolve home: %w", err)
	}
	return filepath.Join(home, ".mcpbind"), nil
}
