package main

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"avo/interpreter-go/pkg/driver"
)

const watchDebounce = 150 * time.Millisecond

// watcher reports batches of source and manifest changes below its roots.
type watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

func newWatcher(roots []string, logger *slog.Logger) (*watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{fs: fsWatcher, logger: logger, debounce: watchDebounce}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.logger.Debug("watching directory", "path", path)
		return w.fs.Add(path)
	})
}

func relevantChange(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	return filepath.Ext(name) == driver.SourceExt || name == driver.ManifestName
}

// watchCreated adds a newly created directory tree to the watch list.
func (w *watcher) watchCreated(path string) {
	if err := w.addRecursive(path); err != nil {
		w.logger.Warn("cannot watch new path", "path", path, "error", err)
	}
}

// Run calls onChange once per settled burst of relevant events until ctx is
// done.
func (w *watcher) Run(ctx context.Context, onChange func()) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.watchCreated(event.Name)
			}
			if !relevantChange(event) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			onChange()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchProject runs the project, then re-runs it whenever its sources or
// manifest change. The manifest is reloaded before every run.
func watchProject(ctx context.Context, dir, logLevel string, proj *project) int {
	roots := []string{proj.manifest.Dir}
	if rel, err := filepath.Rel(proj.manifest.Dir, proj.manifest.SourceDir); err != nil || strings.HasPrefix(rel, "..") {
		roots = append(roots, proj.manifest.SourceDir)
	}
	w, err := newWatcher(roots, proj.logger)
	if err != nil {
		return reportStartup(err)
	}
	defer w.Close()

	runOnce := func() {
		if err := proj.execute(); err != nil {
			proj.errors.Handler.Report(err)
		}
		proj.logger.Info("waiting for changes", "dir", proj.manifest.Dir)
	}
	runOnce()
	w.Run(ctx, func() {
		next, err := openProject(dir, logLevel)
		if err != nil {
			reportStartup(err)
			return
		}
		proj = next
		runOnce()
	})
	return exitOK
}
