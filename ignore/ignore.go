package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which paths under the root take part in indexing.
// It combines the hidden/excluded directory rules, the document extension filter,
// .gitignore and .docignore rules, and custom exclude globs.
// Thread-safe: Reload() acquires a write lock, the Should* methods acquire a read lock.
type Matcher struct {
	mu             sync.RWMutex
	rootDir        string
	ignoreFiles    []gitignore.GitIgnore
	customPatterns []string
	extensions     []string
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir        string
	CustomPatterns []string
	Extensions     []string
}

// NewMatcher creates a matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:        options.RootDir,
		customPatterns: normalizePatterns(options.CustomPatterns),
		extensions:     NormalizeExtensions(options.Extensions),
	}
	matcher.ignoreFiles = loadIgnoreFiles(options.RootDir)
	return matcher
}

// RootDir returns the directory the matcher is anchored at.
func (m *Matcher) RootDir() string {
	return m.rootDir
}

// IsHidden reports whether a single path component is hidden.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsExcludedDirName reports whether a directory name is hidden or in the fixed exclusion set.
func IsExcludedDirName(name string) bool {
	return IsHidden(name) || ExcludedDirNames[name]
}

// IsDocument reports whether a file name carries one of the configured document extensions.
func (m *Matcher) IsDocument(name string) bool {
	if IsHidden(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, allowed := range m.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Extensions returns the normalized document extensions.
func (m *Matcher) Extensions() []string {
	return append([]string(nil), m.extensions...)
}

// ShouldSkipDir returns true if a directory must not be traversed or watched.
// The root directory itself is never skipped.
func (m *Matcher) ShouldSkipDir(absolutePath string) bool {
	if absolutePath == m.rootDir {
		return false
	}
	if IsExcludedDirName(filepath.Base(absolutePath)) {
		return true
	}
	return m.matchesRules(absolutePath, true)
}

// ShouldIgnore returns true if the path, or any directory above it, is excluded.
// Used by the watcher, which sees paths without having walked their ancestry.
func (m *Matcher) ShouldIgnore(absolutePath string, isDir bool) bool {
	relativePath, ok := m.relative(absolutePath)
	if !ok {
		return true
	}
	if relativePath == "." {
		return false
	}

	parts := strings.Split(relativePath, "/")
	for i, part := range parts {
		last := i == len(parts)-1
		if last && !isDir {
			if IsHidden(part) {
				return true
			}
			continue
		}
		if IsExcludedDirName(part) {
			return true
		}
	}

	return m.matchesRules(absolutePath, isDir)
}

// IsIgnoreFile reports whether the path is one of the root-level ignore files.
func (m *Matcher) IsIgnoreFile(absolutePath string) bool {
	if filepath.Dir(absolutePath) != m.rootDir {
		return false
	}
	base := filepath.Base(absolutePath)
	for _, name := range IgnoreFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// matchesRules checks ignore files and custom patterns.
func (m *Matcher) matchesRules(absolutePath string, isDir bool) bool {
	relativePath, ok := m.relative(absolutePath)
	if !ok {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, gi := range m.ignoreFiles {
		match := gi.Relative(relativePath, isDir)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// matchesCustomPatterns checks user-provided exclude globs against the relative path and basename.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

func (m *Matcher) relative(absolutePath string) (string, bool) {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(relativePath), true
}

// Reload re-reads the ignore files from disk.
// Used when the watcher detects changes to them.
func (m *Matcher) Reload() {
	ignoreFiles := loadIgnoreFiles(m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreFiles = ignoreFiles
}

func loadIgnoreFiles(rootDir string) []gitignore.GitIgnore {
	var loaded []gitignore.GitIgnore
	for _, name := range IgnoreFileNames {
		if gi := loadIgnoreFile(filepath.Join(rootDir, name), rootDir); gi != nil {
			loaded = append(loaded, gi)
		}
	}
	return loaded
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}

// NormalizeExtensions lowercases extensions and ensures a leading dot.
// An empty list yields DefaultExtensions.
func NormalizeExtensions(extensions []string) []string {
	var normalized []string
	seen := make(map[string]bool)
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !seen[ext] {
			seen[ext] = true
			normalized = append(normalized, ext)
		}
	}
	if len(normalized) == 0 {
		return append([]string(nil), DefaultExtensions...)
	}
	return normalized
}

func normalizePatterns(patterns []string) []string {
	var normalized []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(strings.ReplaceAll(pattern, "\\", "/"))
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			continue
		}
		normalized = append(normalized, pattern)
	}
	return normalized
}
