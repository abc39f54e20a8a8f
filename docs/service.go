// Package docs is the facade shared by the HTTP and MCP transports: every untrusted
// path goes through the guard here before the filesystem is touched.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
)

// WatchCounter reports how many directories are being watched.
type WatchCounter interface {
	WatchedDirCount() int
}

// Options holds the collaborators of a Service.
type Options struct {
	Files   *index.FileIndex
	Names   *index.NameIndex // optional
	Scanner *scanner.Scanner
	Rules   *ignore.Matcher
	Engine  *search.Engine
	Watcher WatchCounter // optional
	Logger  *slog.Logger
}

// Service serves guarded reads, listings and searches over the document tree.
type Service struct {
	rootDir   string
	files     *index.FileIndex
	names     *index.NameIndex
	scanner   *scanner.Scanner
	rules     *ignore.Matcher
	engine    *search.Engine
	watcher   WatchCounter
	logger    *slog.Logger
	startedAt time.Time
}

// NewService creates a Service rooted at the scanner's root directory.
func NewService(options Options) *Service {
	return &Service{
		rootDir:   options.Scanner.RootDir(),
		files:     options.Files,
		names:     options.Names,
		scanner:   options.Scanner,
		rules:     options.Rules,
		engine:    options.Engine,
		watcher:   options.Watcher,
		logger:    options.Logger,
		startedAt: time.Now(),
	}
}

// RootDir returns the resolved root directory.
func (s *Service) RootDir() string {
	return s.rootDir
}

// Document is an indexed record together with the bytes read at access time.
type Document struct {
	Record  *index.FileRecord
	Content []byte
}

// Read returns the document at the untrusted relative path.
func (s *Service) Read(ctx context.Context, relativePath string) (Document, error) {
	if err := s.files.EnsureBuilt(ctx, s.scanner); err != nil {
		return Document{}, fmt.Errorf("building index: %w", err)
	}

	absolutePath, err := guard.Resolve(s.rootDir, relativePath)
	if err != nil {
		s.logger.Warn("rejected path", "path", relativePath)
		return Document{}, err
	}

	key, _ := guard.Relative(s.rootDir, absolutePath)
	if key == "" || !s.rules.IsDocument(path.Base(key)) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotADocument, relativePath)
	}

	record, ok := s.files.Get(key)
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, relativePath)
	}

	content, err := os.ReadFile(record.AbsolutePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("%w: %s", ErrNotFound, relativePath)
		}
		return Document{}, fmt.Errorf("reading %s: %w", relativePath, err)
	}

	return Document{Record: record, Content: content}, nil
}

// List returns one level of the directory at the untrusted relative path.
func (s *Service) List(relativeDir string) (scanner.Listing, error) {
	listing, err := s.scanner.ListOneLevel(relativeDir)
	switch {
	case err == nil:
		return listing, nil
	case errors.Is(err, guard.ErrAccessDenied):
		s.logger.Warn("rejected path", "path", relativeDir)
		return scanner.Listing{}, err
	case errors.Is(err, fs.ErrNotExist):
		return scanner.Listing{}, fmt.Errorf("%w: %s", ErrNotFound, relativeDir)
	case errors.Is(err, scanner.ErrNotDirectory):
		return scanner.Listing{}, fmt.Errorf("%w: %s", ErrNotADirectory, relativeDir)
	default:
		return scanner.Listing{}, err
	}
}

// Files returns every indexed record, or those matching a doublestar pattern.
func (s *Service) Files(ctx context.Context, pattern string) ([]*index.FileRecord, error) {
	if err := s.files.EnsureBuilt(ctx, s.scanner); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	if pattern == "" {
		return s.files.All(), nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
	}
	return s.files.Glob(pattern)
}

// Search runs a query in the named scope ("" means name).
func (s *Service) Search(ctx context.Context, query string, scopeName string) (search.Result, error) {
	scope, err := search.ParseScope(scopeName)
	if err != nil {
		return search.Result{}, err
	}
	if err := s.files.EnsureBuilt(ctx, s.scanner); err != nil {
		return search.Result{}, fmt.Errorf("building index: %w", err)
	}
	if scope == search.ScopeGlob && !doublestar.ValidatePattern(query) {
		return search.Result{}, fmt.Errorf("%w: %s", ErrInvalidPattern, query)
	}

	start := time.Now()
	result, err := s.engine.Search(ctx, query, scope)
	if err != nil {
		return search.Result{}, err
	}

	s.logger.Debug("search",
		"query", query,
		"scope", scope,
		"hits", len(result.Hits),
		"total", result.Total,
		"elapsed", time.Since(start),
	)
	return result, nil
}

// Reindex reloads ignore rules and rebuilds the index from a fresh scan.
func (s *Service) Reindex(ctx context.Context) (index.RebuildStats, error) {
	s.rules.Reload()
	stats, err := s.files.Rebuild(ctx, s.scanner)
	if err != nil {
		return index.RebuildStats{}, fmt.Errorf("rebuilding index: %w", err)
	}

	s.logger.Info("reindex complete",
		"files", stats.Files,
		"added", stats.Added,
		"removed", stats.Removed,
		"changed", stats.Changed,
		"elapsed", stats.Duration,
	)
	return stats, nil
}

// Status is a snapshot of the index state.
type Status struct {
	RootDir       string
	Extensions    []string
	Files         int
	TotalBytes    int64
	NameIndexDocs uint64
	WatchedDirs   int
	StartedAt     time.Time
	Uptime        time.Duration
	LastRebuild   index.RebuildStats
	Built         bool
}

// Status returns the current index state.
func (s *Service) Status() Status {
	status := Status{
		RootDir:     s.rootDir,
		Extensions:  s.rules.Extensions(),
		Files:       s.files.Count(),
		TotalBytes:  s.files.TotalSizeBytes(),
		StartedAt:   s.startedAt,
		Uptime:      time.Since(s.startedAt),
		LastRebuild: s.files.LastRebuild(),
		Built:       s.files.Built(),
	}
	if s.names != nil {
		status.NameIndexDocs = s.names.DocumentCount()
	}
	if s.watcher != nil {
		status.WatchedDirs = s.watcher.WatchedDirCount()
	}
	return status
}
