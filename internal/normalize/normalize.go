// Package normalize applies server-specific field renaming to tool results.
// Servers are inconsistent about result key casing; a rules file maps each
// server to explicit renames and/or a target case style, and the same rules
// are embedded into the generated runtime so wrappers behave identically.
package normalize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okeefe/mcpbind/internal/strutil"
)

// Case styles a server's result keys can be converted to.
const (
	StyleSnake = "snake"
	StyleCamel = "camel"
)

// ServerRules holds the renaming convention for one server. Explicit renames
// win over the style conversion.
type ServerRules struct {
	Style  string            `yaml:"style"`
	Rename map[string]string `yaml:"rename"`
}

// Rules maps server names to their renaming conventions. The zero value is
// the identity transform.
type Rules struct {
	Servers map[string]ServerRules `yaml:"servers"`
}

// Load reads a YAML rules file. An empty path returns identity rules.
func Load(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("normalize: read rules: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("normalize: parse rules: %w", err)
	}

	for name, sr := range r.Servers {
		switch sr.Style {
		case "", StyleSnake, StyleCamel:
		default:
			return nil, fmt.Errorf("normalize: server %q: unknown style %q", name, sr.Style)
		}
	}

	return &r, nil
}

// Apply renames keys throughout v according to the rules for server. Maps
// and slices are walked recursively; all other values pass through
// unchanged. Servers without rules get the identity transform.
func (r *Rules) Apply(v any, server string) any {
	sr, ok := r.forServer(server)
	if !ok {
		return v
	}
	return walk(v, sr)
}

func (r *Rules) forServer(server string) (ServerRules, bool) {
	if r == nil || r.Servers == nil {
		return ServerRules{}, false
	}
	sr, ok := r.Servers[server]
	return sr, ok
}

func walk(v any, sr ServerRules) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[renameKey(k, sr)] = walk(inner, sr)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = walk(inner, sr)
		}
		return out
	default:
		return v
	}
}

func renameKey(key string, sr ServerRules) string {
	if to, ok := sr.Rename[key]; ok {
		return to
	}

	switch sr.Style {
	case StyleSnake:
		return strutil.ToSnakeCase(key)
	case StyleCamel:
		return strutil.ToCamelCase(key)
	default:
		return key
	}
}

// RenameTables returns the explicit rename maps and case styles keyed by
// server, for embedding into the generated runtime.
func (r *Rules) RenameTables() (renames map[string]map[string]string, styles map[string]string) {
	renames = make(map[string]map[string]string)
	styles = make(map[string]string)

	if r == nil {
		return renames, styles
	}

	for name, sr := range r.Servers {
		if len(sr.Rename) > 0 {
			renames[name] = sr.Rename
		}
		if sr.Style != "" {
			styles[name] = sr.Style
		}
	}

	return renames, styles
}
