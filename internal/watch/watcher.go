// Package watch follows a graph directory on disk and reports journal
// changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long the watcher waits after the last change before it
// reports the graph as settled.
const Debounce = 200 * time.Millisecond

// EventCallback is called for every change of a page file.
// kind is one of "created", "updated", "deleted", "renamed".
type EventCallback func(kind string, path string)

// SettledCallback is called once a burst of changes has been quiet for
// Debounce.
type SettledCallback func(ctx context.Context)

// Watch starts an fsnotify watcher on the graph root and processes file
// change events until ctx is cancelled. path passed to onEvent is relative
// to root. Either callback may be nil.
//
// New directories created at runtime are automatically added to the watch
// list and their page files reported as created.
func Watch(ctx context.Context, root string, logger *slog.Logger, onEvent EventCallback, onSettled SettledCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleSettle := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(Debounce)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(Debounce)
		}
	}

	emit := func(kind, absPath string) {
		rel, relErr := filepath.Rel(root, absPath)
		if relErr != nil {
			return
		}
		logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", kind))
		if onEvent != nil {
			onEvent(kind, rel)
		}
		scheduleSettle()
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			logger.Debug("watcher: settled")
			if onSettled != nil {
				onSettled(ctx)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					for _, p := range pageFiles(absPath) {
						emit("created", p)
					}
					continue
				}
			}

			if !isPageFile(absPath) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				emit("created", absPath)
			case ev.Op&fsnotify.Write != 0:
				emit("updated", absPath)
			case ev.Op&fsnotify.Remove != 0:
				emit("deleted", absPath)
			case ev.Op&fsnotify.Rename != 0:
				// Fired on the old path; the new one arrives as Create.
				emit("renamed", absPath)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// isPageFile reports whether path is a visible markdown page.
func isPageFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".md") && !strings.HasPrefix(base, ".")
}

// pageFiles lists the page files below dir.
func pageFiles(dir string) []string {
	var out []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isPageFile(path) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out
}

// addDirsRecursive adds root and all its subdirectories to the watcher,
// skipping hidden directories such as .git and logseq/bak.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
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
		return w.Add(path)
	})
}
