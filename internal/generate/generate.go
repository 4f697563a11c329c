// Package generate orchestrates a generation run: discover the registry,
// connect to each server, and write its typed bindings.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/okeefe/mcpbind/internal/client"
	"github.com/okeefe/mcpbind/internal/codegen"
	"github.com/okeefe/mcpbind/internal/config"
	"github.com/okeefe/mcpbind/internal/normalize"
)

// connect is swapped out by tests to run against in-memory servers.
var connect = client.New

// Options controls a generation run.
type Options struct {
	ConfigPath string   // explicit registry path; empty means discovery
	OutputDir  string   // root of the generated tree
	Servers    []string // restrict to these servers; empty means all
	RulesPath  string   // normalization rules file; empty means identity
	WorkDir    string   // directory project discovery starts from
	Logger     *slog.Logger
}

// Summary reports what a run produced. A server appears in exactly one of
// the two maps; disabled servers appear in neither.
type Summary struct {
	Generated map[string]int    // server -> tool count
	Skipped   map[string]string // server -> failure reason
}

// Run executes one generation pass. Registry and rules problems are fatal;
// a single server failing to connect or list is logged, recorded in the
// summary, and does not stop the remaining servers.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	reg, err := config.Discover(opts.ConfigPath, workDir)
	if err != nil {
		return nil, err
	}

	rules, err := normalize.Load(opts.RulesPath)
	if err != nil {
		return nil, err
	}

	names, err := selectServers(reg, opts.Servers)
	if err != nil {
		return nil, err
	}

	assembler := &codegen.Assembler{OutDir: opts.OutputDir, Rules: rules}
	summary := &Summary{
		Generated: make(map[string]int),
		Skipped:   make(map[string]string),
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		serverCfg := reg.McpServers[name]
		if serverCfg.Disabled {
			logger.Debug("skipping disabled server", "server", name)
			continue
		}

		count, err := generateServer(ctx, assembler, name, serverCfg)
		if err != nil {
			logger.Warn("skipping server", "server", name, "error", err)
			summary.Skipped[name] = err.Error()
			continue
		}

		logger.Info("generated bindings", "server", name, "tools", count)
		summary.Generated[name] = count
	}

	succeeded := make([]string, 0, len(summary.Generated))
	for name := range summary.Generated {
		succeeded = append(succeeded, name)
	}
	sort.Strings(succeeded)

	if len(succeeded) > 0 {
		if err := assembler.WriteShared(succeeded); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func generateServer(ctx context.Context, assembler *codegen.Assembler, name string, cfg config.ServerConfig) (int, error) {
	c, err := connect(ctx, name, cfg)
	if err != nil {
		return 0, err
	}
	defer c.Close()

	tools, err := c.Tools()
	if err != nil {
		return 0, err
	}

	return assembler.WriteServer(name, tools)
}

// selectServers resolves the effective server list, sorted for a
// deterministic run order. Requesting a server the registry does not know
// is an error rather than a silent no-op.
func selectServers(reg *config.Registry, requested []string) ([]string, error) {
	if len(requested) == 0 {
		names := make([]string, 0, len(reg.McpServers))
		for name := range reg.McpServers {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	names := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, ok := reg.McpServers[name]; !ok {
			return nil, fmt.Errorf("generate: server %q not in registry", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
