package codegen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/okeefe/mcpbind/internal/normalize"
	"github.com/okeefe/mcpbind/internal/schema"
	"github.com/okeefe/mcpbind/internal/strutil"
)

// Assembler writes generated modules to disk. Every run overwrites whatever
// a previous run left behind; there is no incremental diffing.
type Assembler struct {
	OutDir string
	Rules  *normalize.Rules
}

// WriteServer generates a server's module: one source unit per tool, an
// aggregator index, and the tool catalog, all under a server-named
// directory. It returns the number of tool units written.
//
// Two distinct tool names sanitizing to the same identifier would silently
// overwrite each other's artifact, so that is an error, detected before any
// file is written.
func (a *Assembler) WriteServer(serverName string, tools []ToolDescriptor) (int, error) {
	type unit struct {
		name    string
		content string
	}

	seen := make(map[string]string, len(tools))
	units := make([]unit, 0, len(tools))
	exports := make([]string, 0, len(tools))

	for _, tool := range tools {
		fn := strutil.Sanitize(tool.Name)
		if prev, dup := seen[fn]; dup {
			return 0, fmt.Errorf("codegen: server %q: tools %q and %q both sanitize to %q", serverName, prev, tool.Name, fn)
		}
		seen[fn] = tool.Name

		node, err := schema.Parse(tool.InputSchema)
		if err != nil {
			// Undecodable schema degrades to a no-params container, the
			// same as a missing one.
			node = nil
		}

		model := SynthesizeModel(tool.Name, node)
		wrapper := SynthesizeWrapper(serverName, tool.Name, tool.Description, model)

		units = append(units, unit{name: fn, content: RenderToolFile(model, wrapper)})
		exports = append(exports, fn)
	}

	serverDir := filepath.Join(a.OutDir, serverName)
	if err := os.MkdirAll(serverDir, 0o755); err != nil {
		return 0, fmt.Errorf("codegen: create server directory: %w", err)
	}

	for _, u := range units {
		path := filepath.Join(serverDir, u.name+".ts")
		if err := os.WriteFile(path, []byte(u.content), 0o644); err != nil {
			return 0, fmt.Errorf("codegen: write %s: %w", path, err)
		}
	}

	indexPath := filepath.Join(serverDir, "index.ts")
	if err := os.WriteFile(indexPath, []byte(RenderIndexFile(serverName, exports)), 0o644); err != nil {
		return 0, fmt.Errorf("codegen: write %s: %w", indexPath, err)
	}

	catalogPath := filepath.Join(serverDir, "README.md")
	if err := os.WriteFile(catalogPath, []byte(RenderCatalog(serverName, tools)), 0o644); err != nil {
		return 0, fmt.Errorf("codegen: write %s: %w", catalogPath, err)
	}

	return len(units), nil
}

// WriteShared writes the artifacts spanning servers: the runtime helper unit
// and the top-level index over every generated server.
func (a *Assembler) WriteShared(serverNames []string) error {
	if err := os.MkdirAll(a.OutDir, 0o755); err != nil {
		return fmt.Errorf("codegen: create output directory: %w", err)
	}

	runtimePath := filepath.Join(a.OutDir, "runtime.ts")
	if err := os.WriteFile(runtimePath, []byte(RenderRuntime(a.Rules)), 0o644); err != nil {
		return fmt.Errorf("codegen: write %s: %w", runtimePath, err)
	}

	indexPath := filepath.Join(a.OutDir, "index.ts")
	if err := os.WriteFile(indexPath, []byte(RenderRootIndex(serverNames)), 0o644); err != nil {
		return fmt.Errorf("codegen: write %s: %w", indexPath, err)
	}

	return nil
}
