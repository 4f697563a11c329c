package generate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses the bursts of events editors produce when saving.
const debounceDelay = 500 * time.Millisecond

// Watch runs an initial generation pass, then regenerates whenever the
// registry or rules file changes, until ctx is cancelled. It needs an
// explicit config path; discovery would leave nothing concrete to watch.
func Watch(ctx context.Context, opts Options) error {
	if opts.ConfigPath == "" {
		return fmt.Errorf("generate: watch mode requires an explicit config path")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("generate: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch containing directories, not the files themselves: editors
	// replace files on save, which drops a watch on the file's inode.
	watched := map[string]bool{opts.ConfigPath: true}
	dirs := map[string]bool{filepath.Dir(opts.ConfigPath): true}
	if opts.RulesPath != "" {
		watched[opts.RulesPath] = true
		dirs[filepath.Dir(opts.RulesPath)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("generate: watch %s: %w", dir, err)
		}
	}

	runOnce := func() {
		summary, err := Run(ctx, opts)
		if err != nil {
			logger.Error("generation failed", "error", err)
			return
		}
		logger.Info("generation complete",
			"servers", len(summary.Generated), "skipped", len(summary.Skipped))
	}

	runOnce()
	logger.Info("watching for changes", "config", opts.ConfigPath)

	var debounce *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			logger.Info("change detected, regenerating")
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
