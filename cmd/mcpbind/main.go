// Command mcpbind generates statically-typed tool bindings from MCP server
// registries and invokes bound tools by their qualified identifier.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/okeefe/mcpbind/internal/client"
	"github.com/okeefe/mcpbind/internal/config"
	"github.com/okeefe/mcpbind/internal/envutil"
	"github.com/okeefe/mcpbind/internal/generate"
	"github.com/okeefe/mcpbind/internal/normalize"
)

const usage = `Usage:
  mcpbind generate [flags]        Generate typed bindings for configured servers
  mcpbind call <server__tool> [json-args] [flags]
                                  Invoke a tool by its qualified identifier

Run "mcpbind <command> -h" for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "generate"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "generate":
		return runGenerate(args)
	case "call":
		return runCall(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// signalContext cancels on SIGINT/SIGTERM so stdio subprocesses shut down
// cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("MCPBIND_CONFIG"), "Path to registry file (default: discovery)")
	outputDir := fs.String("out", "./generated", "Directory to write generated bindings")
	servers := fs.String("server", "", "Generate only for specific server(s), comma-separated")
	rulesPath := fs.String("rules", "", "Path to field normalization rules file")
	watch := fs.Bool("watch", false, "Regenerate when the registry or rules change")
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := newLogger(*verbose)
	envutil.LoadDotenv(".")

	ctx, cancel := signalContext()
	defer cancel()

	opts := generate.Options{
		ConfigPath: *configPath,
		OutputDir:  *outputDir,
		RulesPath:  *rulesPath,
		Logger:     logger,
	}
	if *servers != "" {
		for _, name := range strings.Split(*servers, ",") {
			if name = strings.TrimSpace(name); name != "" {
				opts.Servers = append(opts.Servers, name)
			}
		}
	}

	if *watch {
		err := generate.Watch(ctx, opts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	summary, err := generate.Run(ctx, opts)
	if err != nil {
		return err
	}

	printSummary(summary, *outputDir)
	// All servers disabled is a successful no-op; all servers failing is not.
	if len(summary.Generated) == 0 && len(summary.Skipped) > 0 {
		return fmt.Errorf("no servers generated")
	}
	return nil
}

func printSummary(summary *generate.Summary, outputDir string) {
	names := make([]string, 0, len(summary.Generated))
	total := 0
	for name, count := range summary.Generated {
		names = append(names, name)
		total += count
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s: %d tools\n", name, summary.Generated[name])
	}
	fmt.Printf("Generated bindings for %d server(s), %d tool(s) in %s\n",
		len(names), total, outputDir)

	skipped := make([]string, 0, len(summary.Skipped))
	for name := range summary.Skipped {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		fmt.Printf("Skipped %s: %s\n", name, summary.Skipped[name])
	}
}

func runCall(args []string) error {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("MCPBIND_CONFIG"), "Path to registry file (default: discovery)")
	rulesPath := fs.String("rules", "", "Path to field normalization rules file")
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("call: missing tool identifier (want \"server__tool\")")
	}
	id := rest[0]

	serverName, _, err := client.SplitID(id)
	if err != nil {
		return err
	}

	var toolArgs map[string]any
	if len(rest) > 1 {
		if err := json.Unmarshal([]byte(rest[1]), &toolArgs); err != nil {
			return fmt.Errorf("call: parse arguments: %w", err)
		}
	}

	slog.SetDefault(newLogger(*verbose))
	envutil.LoadDotenv(".")

	reg, err := config.Discover(*configPath, ".")
	if err != nil {
		return err
	}
	serverCfg, ok := reg.McpServers[serverName]
	if !ok {
		return fmt.Errorf("call: server %q not in registry", serverName)
	}
	if serverCfg.Disabled {
		return fmt.Errorf("call: server %q is disabled", serverName)
	}

	rules, err := normalize.Load(*rulesPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Connect only to the addressed server, not the whole registry.
	hub := client.NewHub()
	if err := hub.Connect(ctx, &config.Registry{
		McpServers: map[string]config.ServerConfig{serverName: serverCfg},
	}); err != nil {
		return err
	}
	defer hub.Close()

	value, err := hub.Invoke(ctx, id, toolArgs)
	if err != nil {
		return err
	}

	value = rules.Apply(client.UnwrapValue(value), serverName)

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("call: encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
