package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/pqdeps/internal/loader"
)

// watchDebounce collapses bursts of events (editors write several times per
// save) into one run.
const watchDebounce = 100 * time.Millisecond

var errWatchStdin = errors.New("--watch needs a file or directory, not stdin")

// watch calls run once, then again after every debounced change to the query
// files at path, until ctx is done. path is a file or a directory.
func watch(ctx context.Context, path string, logger *slog.Logger, run func()) error {
	if path == "" || path == loader.StdinPath {
		return errWatchStdin
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	// Watch the parent of a single file so renames by editors are seen.
	dir := path
	match := loader.IsQueryFile
	if !info.IsDir() {
		target := filepath.Clean(path)
		dir = filepath.Dir(target)
		match = func(name string) bool { return filepath.Clean(name) == target }
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Debug("watching for changes", "path", dir)

	run()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !match(event.Name) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
