package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
)

// Updater is the single consumer that applies debounced events to the index.
type Updater struct {
	Index   *index.FileIndex
	Scanner *scanner.Scanner
	Rules   *ignore.Matcher
	Logger  *slog.Logger
}

// Run applies events one at a time until ctx is done.
func (u *Updater) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			u.Apply(ctx, event)
		}
	}
}

// Apply performs the index mutation for one event.
func (u *Updater) Apply(ctx context.Context, event Event) {
	rootDir := u.Scanner.RootDir()
	relPath, ok := guard.Relative(rootDir, event.Path)
	if !ok || relPath == "" {
		return
	}

	switch event.Kind {
	case RulesChanged:
		u.Rules.Reload()
		stats, err := u.Index.Rebuild(ctx, u.Scanner)
		if err != nil {
			u.Logger.Warn("rebuild after ignore rule change failed", "error", err)
			return
		}
		u.Logger.Info("reloaded ignore rules",
			"trigger", filepath.Base(event.Path),
			"files", stats.Files,
			"added", stats.Added,
			"removed", stats.Removed,
		)

	case Added, Modified:
		// Modified on an unknown key is handled like Added
		record, ok := u.Scanner.Stat(event.Path)
		if !ok {
			u.Logger.Debug("dropped update for unreadable path", "path", relPath, "kind", event.Kind)
			return
		}
		u.Index.Set(record)
		u.Logger.Debug("updated index", "path", relPath, "kind", event.Kind, "size", record.SizeBytes)

	case Removed:
		// The path may have been re-created before the event settled
		if info, err := os.Lstat(event.Path); err == nil && info.IsDir() {
			u.resyncDir(ctx, relPath, event.Path)
			return
		}
		if record, ok := u.Scanner.Stat(event.Path); ok {
			u.Index.Set(record)
			u.Logger.Debug("path re-created before removal settled", "path", relPath)
			return
		}
		u.Index.Delete(relPath)
		if removed := u.Index.DeleteTree(relPath); removed > 0 {
			u.Logger.Debug("removed directory from index", "path", relPath, "files", removed)
			return
		}
		u.Logger.Debug("removed from index", "path", relPath)
	}
}

// resyncDir makes the keys under a re-created directory match what is on disk now.
// Child events may have settled before the directory's removal, so their records are kept
// and only keys that no longer exist are dropped.
func (u *Updater) resyncDir(ctx context.Context, relDir string, absoluteDir string) {
	records, err := u.Scanner.ScanDir(ctx, absoluteDir)
	if err != nil {
		u.Logger.Warn("failed to rescan re-created directory", "path", relDir, "error", err)
		return
	}

	present := make(map[string]bool, len(records))
	for _, record := range records {
		present[record.RelativePath] = true
		u.Index.Set(record)
	}

	prefix := relDir + "/"
	stale := 0
	for _, record := range u.Index.All() {
		if strings.HasPrefix(record.RelativePath, prefix) && !present[record.RelativePath] {
			u.Index.Delete(record.RelativePath)
			stale++
		}
	}
	u.Logger.Debug("resynced re-created directory", "path", relDir, "files", len(records), "stale", stale)
}
