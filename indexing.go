package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexandro/mdindex/config"
	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
	"github.com/lexandro/mdindex/watcher"
)

// stack is the index-side wiring shared by both transports.
type stack struct {
	rootDir   string
	rules     *ignore.Matcher
	scanner   *scanner.Scanner
	fileIndex *index.FileIndex
	names     *index.NameIndex
	engine    *search.Engine
	watcher   *watcher.Watcher
	service   *docs.Service
	logger    *slog.Logger
}

// buildStack resolves the root and creates the index components. Nothing is scanned yet.
func buildStack(cfg *config.Config, logger *slog.Logger) (*stack, error) {
	rootDir, err := guard.ResolveRoot(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	rules := ignore.NewMatcher(ignore.MatcherOptions{
		RootDir:        rootDir,
		CustomPatterns: cfg.Exclude,
		Extensions:     cfg.Extensions,
	})
	sc := scanner.New(rootDir, rules, logger)
	fileIndex := index.NewFileIndex()

	names, err := index.NewNameIndex(logger)
	if err != nil {
		return nil, fmt.Errorf("creating name index: %w", err)
	}
	fileIndex.AddObserver(names)

	return &stack{
		rootDir:   rootDir,
		rules:     rules,
		scanner:   sc,
		fileIndex: fileIndex,
		names:     names,
		engine:    search.NewEngine(fileIndex, names, rootDir, logger),
		logger:    logger,
	}, nil
}

// performIndexing runs the initial scan and logs a summary.
func (s *stack) performIndexing(ctx context.Context) error {
	stats, err := s.fileIndex.Rebuild(ctx, s.scanner)
	if err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}

	s.logger.Info("initial indexing complete",
		"files", stats.Files,
		"totalSize", stats.TotalBytes,
		"duration", stats.Duration,
	)
	return nil
}

// startWatching attaches the watcher and its updater. A watcher failure is logged and
// the index keeps serving without live updates.
func (s *stack) startWatching(ctx context.Context) {
	fileWatcher, err := watcher.NewWatcher(s.scanner, s.rules, s.logger)
	if err != nil {
		s.logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
		return
	}
	s.watcher = fileWatcher

	updater := &watcher.Updater{
		Index:   s.fileIndex,
		Scanner: s.scanner,
		Rules:   s.rules,
		Logger:  s.logger,
	}
	go fileWatcher.Start(ctx)
	go updater.Run(ctx, fileWatcher.Events())

	s.logger.Info("file watcher started", "directories", fileWatcher.WatchedDirCount())
}

// newService creates the facade. It must run after startWatching so status can report watches.
func (s *stack) newService() *docs.Service {
	options := docs.Options{
		Files:   s.fileIndex,
		Names:   s.names,
		Scanner: s.scanner,
		Rules:   s.rules,
		Engine:  s.engine,
		Logger:  s.logger,
	}
	if s.watcher != nil {
		options.Watcher = s.watcher
	}
	s.service = docs.NewService(options)
	return s.service
}

func (s *stack) close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if err := s.names.Close(); err != nil {
		s.logger.Debug("closing name index", "error", err)
	}
}
