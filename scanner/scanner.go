// Package scanner enumerates documents under the root directory.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
)

// ErrNotDirectory is returned by ListOneLevel for paths that are not directories.
var ErrNotDirectory = errors.New("not a directory")

// Scanner walks the document tree below a root directory.
type Scanner struct {
	rootDir string
	rules   *ignore.Matcher
	logger  *slog.Logger
}

// New creates a scanner. rootDir must come from guard.ResolveRoot.
func New(rootDir string, rules *ignore.Matcher, logger *slog.Logger) *Scanner {
	return &Scanner{rootDir: rootDir, rules: rules, logger: logger}
}

// RootDir returns the directory the scanner walks.
func (s *Scanner) RootDir() string {
	return s.rootDir
}

// Scan walks the whole tree and returns one record per document.
// Unreadable directories are logged and treated as empty; files that vanish between
// listing and stat are dropped. Only context cancellation aborts the walk.
func (s *Scanner) Scan(ctx context.Context) ([]*index.FileRecord, error) {
	return s.ScanDir(ctx, s.rootDir)
}

// ScanDir walks the subtree rooted at dir, which must lie under the root.
func (s *Scanner) ScanDir(ctx context.Context, dir string) ([]*index.FileRecord, error) {
	if !guard.IsContained(dir, s.rootDir) {
		return nil, guard.ErrAccessDenied
	}

	var records []*index.FileRecord
	pending := []string{dir}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		entries, err := os.ReadDir(current)
		if err != nil {
			s.logger.Warn("cannot list directory, skipping subtree", "path", current, "error", err)
			continue
		}

		for _, entry := range entries {
			absolutePath := filepath.Join(current, entry.Name())

			if entry.IsDir() {
				if !s.rules.ShouldSkipDir(absolutePath) {
					pending = append(pending, absolutePath)
				}
				continue
			}

			record, ok := s.recordFor(absolutePath, entry)
			if ok {
				records = append(records, record)
			}
		}
	}

	return records, nil
}

// recordFor stats one directory entry and builds its record.
func (s *Scanner) recordFor(absolutePath string, entry fs.DirEntry) (*index.FileRecord, bool) {
	if !entry.Type().IsRegular() {
		return nil, false
	}
	if !s.rules.IsDocument(entry.Name()) {
		return nil, false
	}
	if s.rules.ShouldIgnore(absolutePath, false) {
		return nil, false
	}

	info, err := entry.Info()
	if err != nil {
		// Removed between listing and stat
		s.logger.Debug("skipped vanished file", "path", absolutePath, "error", err)
		return nil, false
	}

	relativePath, ok := guard.Relative(s.rootDir, absolutePath)
	if !ok {
		return nil, false
	}
	return index.NewFileRecord(relativePath, absolutePath, info), true
}

// Stat builds a fresh record for a single document path.
// Returns false if the path is not an indexable document or cannot be stat'ed.
func (s *Scanner) Stat(absolutePath string) (*index.FileRecord, bool) {
	if !s.rules.IsDocument(filepath.Base(absolutePath)) || s.rules.ShouldIgnore(absolutePath, false) {
		return nil, false
	}
	info, err := os.Lstat(absolutePath)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	relativePath, ok := guard.Relative(s.rootDir, absolutePath)
	if !ok || relativePath == "" {
		return nil, false
	}
	return index.NewFileRecord(relativePath, absolutePath, info), true
}

// DirEntry is a subdirectory in a one-level listing.
type DirEntry struct {
	Name         string
	RelativePath string
}

// Listing is the content of one directory, for browsing.
type Listing struct {
	RelativePath string
	Dirs         []DirEntry
	Files        []*index.FileRecord
}

// ListOneLevel lists the subdirectories and documents directly inside the
// untrusted relative directory path. Both lists are sorted by name.
func (s *Scanner) ListOneLevel(relativeDir string) (Listing, error) {
	absoluteDir, err := guard.Resolve(s.rootDir, relativeDir)
	if err != nil {
		return Listing{}, err
	}
	if absoluteDir != s.rootDir && s.rules.ShouldIgnore(absoluteDir, true) {
		return Listing{}, fmt.Errorf("listing %s: %w", relativeDir, fs.ErrNotExist)
	}

	info, err := os.Stat(absoluteDir)
	if err != nil {
		return Listing{}, fmt.Errorf("listing %s: %w", relativeDir, err)
	}
	if !info.IsDir() {
		return Listing{}, fmt.Errorf("listing %s: %w", relativeDir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(absoluteDir)
	if err != nil {
		return Listing{}, fmt.Errorf("listing %s: %w", relativeDir, err)
	}

	listing := Listing{}
	listing.RelativePath, _ = guard.Relative(s.rootDir, absoluteDir)

	for _, entry := range entries {
		absolutePath := filepath.Join(absoluteDir, entry.Name())
		if entry.IsDir() {
			if s.rules.ShouldSkipDir(absolutePath) {
				continue
			}
			relativePath, _ := guard.Relative(s.rootDir, absolutePath)
			listing.Dirs = append(listing.Dirs, DirEntry{Name: entry.Name(), RelativePath: relativePath})
			continue
		}
		if record, ok := s.recordFor(absolutePath, entry); ok {
			listing.Files = append(listing.Files, record)
		}
	}

	slices.SortFunc(listing.Dirs, func(a, b DirEntry) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(listing.Files, func(a, b *index.FileRecord) int { return strings.Compare(a.Name, b.Name) })
	return listing, nil
}
