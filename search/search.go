package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/index"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	textsearch "golang.org/x/text/search"
)

const (
	// MaxResults caps the number of hits returned for any scope.
	MaxResults = 200

	// maxReaders bounds concurrent file reads during a content search.
	maxReaders = 8

	// maxContentBytes skips documents too large to scan in full.
	maxContentBytes = 16 << 20

	// fuzzyCandidates limits how many name index hits are considered.
	fuzzyCandidates = 1000
)

var ErrUnknownScope = errors.New("unknown search scope")

// Scope selects what a query is matched against.
type Scope string

const (
	ScopeName    Scope = "name"
	ScopeContent Scope = "content"
	ScopeGlob    Scope = "glob"
	ScopeFuzzy   Scope = "fuzzy"
)

// ParseScope maps a user-supplied scope name to a Scope. An empty value means ScopeName.
func ParseScope(value string) (Scope, error) {
	switch scope := Scope(strings.ToLower(strings.TrimSpace(value))); scope {
	case "":
		return ScopeName, nil
	case ScopeName, ScopeContent, ScopeGlob, ScopeFuzzy:
		return scope, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, value)
	}
}

// Hit is one matching document. Snippet is set for content matches only.
type Hit struct {
	Record  *index.FileRecord
	Snippet *Snippet
}

// Result holds at most MaxResults hits sorted by relative path.
// Total counts every match before truncation.
type Result struct {
	Hits      []Hit
	Total     int
	Truncated bool
}

// Engine answers queries against the index.
type Engine struct {
	files    *index.FileIndex
	names    *index.NameIndex
	rootDir  string
	logger   *slog.Logger
	matchers sync.Pool
}

// NewEngine creates a search engine. names may be nil, in which case the fuzzy scope
// falls back to name matching.
func NewEngine(files *index.FileIndex, names *index.NameIndex, rootDir string, logger *slog.Logger) *Engine {
	return &Engine{
		files:   files,
		names:   names,
		rootDir: rootDir,
		logger:  logger,
		matchers: sync.Pool{
			New: func() any { return textsearch.New(language.Und, textsearch.IgnoreCase) },
		},
	}
}

// Search runs query against the given scope. An empty query matches nothing and
// touches no files.
func (e *Engine) Search(ctx context.Context, query string, scope Scope) (Result, error) {
	switch scope {
	case ScopeName, ScopeContent, ScopeGlob, ScopeFuzzy:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, nil
	}

	var hits []Hit
	var err error
	switch scope {
	case ScopeName:
		hits = e.searchNames(query)
	case ScopeContent:
		hits, err = e.searchContent(ctx, query)
	case ScopeGlob:
		hits, err = e.searchGlob(query)
	case ScopeFuzzy:
		hits, err = e.searchFuzzy(query)
	}
	if err != nil {
		return Result{}, err
	}

	return collect(hits), nil
}

// collect sorts hits by path and applies the result cap.
func collect(hits []Hit) Result {
	slices.SortFunc(hits, func(a, b Hit) int {
		return strings.Compare(a.Record.RelativePath, b.Record.RelativePath)
	})

	result := Result{Hits: hits, Total: len(hits)}
	if len(hits) > MaxResults {
		result.Hits = hits[:MaxResults]
		result.Truncated = true
	}
	return result
}

func (e *Engine) searchNames(query string) []Hit {
	needle := strings.ToLower(query)

	var hits []Hit
	for _, record := range e.files.All() {
		if strings.Contains(strings.ToLower(record.Name), needle) ||
			strings.Contains(strings.ToLower(record.RelativePath), needle) {
			hits = append(hits, Hit{Record: record})
		}
	}
	return hits
}

func (e *Engine) searchGlob(pattern string) ([]Hit, error) {
	records, err := e.files.Glob(pattern)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(records))
	for _, record := range records {
		hits = append(hits, Hit{Record: record})
	}
	return hits, nil
}

func (e *Engine) searchFuzzy(query string) ([]Hit, error) {
	if e.names == nil {
		return e.searchNames(query), nil
	}

	paths, _, err := e.names.Search(query, fuzzyCandidates)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(paths))
	for _, path := range paths {
		// The name index may briefly trail the file index
		if record, ok := e.files.Get(path); ok {
			hits = append(hits, Hit{Record: record})
		}
	}
	return hits, nil
}

func (e *Engine) searchContent(ctx context.Context, query string) ([]Hit, error) {
	var (
		mu   sync.Mutex
		hits []Hit
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxReaders)

	for _, record := range e.files.All() {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			snippet, ok := e.matchFile(record, query)
			if !ok {
				return nil
			}
			mu.Lock()
			hits = append(hits, Hit{Record: record, Snippet: snippet})
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// matchFile reads one document and returns a snippet around its first match.
// Unreadable, oversized and binary files are skipped.
func (e *Engine) matchFile(record *index.FileRecord, query string) (*Snippet, bool) {
	if record.SizeBytes > maxContentBytes {
		e.logger.Debug("skipping large file in content search", "path", record.RelativePath, "size", record.SizeBytes)
		return nil, false
	}

	absolutePath, err := guard.Resolve(e.rootDir, record.RelativePath)
	if err != nil {
		e.logger.Debug("skipping file outside root", "path", record.RelativePath)
		return nil, false
	}

	data, err := os.ReadFile(absolutePath)
	if err != nil {
		e.logger.Debug("skipping unreadable file", "path", record.RelativePath, "error", err)
		return nil, false
	}
	if looksBinary(data) {
		return nil, false
	}

	body := strings.ToValidUTF8(string(data), "�")

	matcher := e.matchers.Get().(*textsearch.Matcher)
	start, end := matcher.IndexString(body, query)
	e.matchers.Put(matcher)

	if start < 0 {
		return nil, false
	}
	return newSnippet(body, start, end), true
}
