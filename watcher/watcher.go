package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/scanner"
)

// Watcher provides recursive file system watching with per-path debouncing.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	rules     *ignore.Matcher
	scanner   *scanner.Scanner
	rootDir   string
	logger    *slog.Logger

	mu          sync.Mutex
	watchedDirs map[string]bool
}

// NewWatcher creates a recursive watcher on the scanner's root directory.
// It registers all non-excluded subdirectories for watching.
func NewWatcher(sc *scanner.Scanner, rules *ignore.Matcher, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:   fsWatcher,
		debouncer:   NewDebouncer(DefaultStabilityWindow),
		rules:       rules,
		scanner:     sc,
		rootDir:     sc.RootDir(),
		logger:      logger,
		watchedDirs: make(map[string]bool),
	}

	if err := fsWatcher.Add(w.rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	w.markWatched(w.rootDir)
	w.watchTree(w.rootDir)

	return w, nil
}

// watchTree registers every non-excluded directory below dir.
func (w *Watcher) watchTree(dir string) {
	pending := []string{dir}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(current)
		if err != nil {
			w.logger.Warn("cannot list directory for watching", "path", current, "error", err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(current, entry.Name())
			if w.rules.ShouldSkipDir(path) {
				continue
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
				continue
			}
			w.markWatched(path)
			pending = append(pending, path)
		}
	}
}

// Events returns the channel that receives debounced events.
func (w *Watcher) Events() <-chan Event {
	return w.debouncer.Output()
}

// Start listens for file system events until ctx is done or the watcher is closed.
// Call this in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent translates a single fsnotify event into a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if w.rules.IsIgnoreFile(path) {
		if event.Op != fsnotify.Chmod {
			w.debouncer.Add(path, RulesChanged)
		}
		return
	}

	// A new directory: watch it and pick up documents written before the watch existed
	if event.Has(fsnotify.Create) {
		info, err := os.Lstat(path)
		if err == nil && info.IsDir() {
			if w.rules.ShouldIgnore(path, true) || w.rules.ShouldSkipDir(path) {
				return
			}
			w.watchNewDir(path)
			return
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.unmarkWatched(path) {
			// A watched directory went away; its documents go with it
			w.debouncer.Add(path, Removed)
			if info, err := os.Lstat(path); err == nil && info.IsDir() {
				// Re-created before the removal was delivered
				w.watchNewDir(path)
			}
			return
		}
	}

	if w.rules.ShouldIgnore(path, false) || !w.rules.IsDocument(filepath.Base(path)) {
		return
	}

	var kind EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = Added
	case event.Has(fsnotify.Write):
		kind = Modified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = Removed
	default:
		return
	}

	w.debouncer.Add(path, kind)
}

// watchNewDir registers a created directory tree and emits Added for documents already in it.
func (w *Watcher) watchNewDir(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch new directory", "path", dir, "error", err)
		return
	}
	w.markWatched(dir)
	w.watchTree(dir)

	records, err := w.scanner.ScanDir(context.Background(), dir)
	if err != nil {
		w.logger.Warn("failed to sweep new directory", "path", dir, "error", err)
		return
	}
	for _, record := range records {
		w.debouncer.Add(record.AbsolutePath, Added)
	}
	w.logger.Debug("watching new directory", "path", dir, "documents", len(records))
}

func (w *Watcher) markWatched(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watchedDirs[dir] = true
}

// unmarkWatched forgets dir and everything below it. Returns true if dir was watched.
func (w *Watcher) unmarkWatched(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watchedDirs[dir] {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for watched := range w.watchedDirs {
		if watched == dir || strings.HasPrefix(watched, prefix) {
			delete(w.watchedDirs, watched)
		}
	}
	return true
}

// WatchedDirCount returns the number of directories registered with fsnotify.
func (w *Watcher) WatchedDirCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watchedDirs)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Close()
	return w.fsWatcher.Close()
}
