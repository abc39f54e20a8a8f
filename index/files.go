package index

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/singleflight"
)

// Source produces the full set of records for a rebuild.
type Source interface {
	Scan(ctx context.Context) ([]*FileRecord, error)
}

// Observer is notified of every index mutation, in the order the mutations were applied.
// Notifications run outside the index lock, one at a time.
type Observer interface {
	Upsert(file *FileRecord)
	Remove(relativePath string)
	Reset(files []*FileRecord)
}

// RebuildStats summarizes one full rebuild compared to the mapping it replaced.
type RebuildStats struct {
	Files      int
	TotalBytes int64
	Added      int
	Removed    int
	Changed    int
	Replayed   int
	Duration   time.Duration
	FinishedAt time.Time
}

type mutationKind int

const (
	mutationSet mutationKind = iota
	mutationDelete
	mutationDeleteTree
)

// mutation is a journaled Set/Delete that arrived while a rebuild was scanning.
type mutation struct {
	kind mutationKind
	file *FileRecord
	path string
}

// FileIndex maps relative paths to file records.
// It keeps a map for O(1) lookups and a sorted slice for ordered iteration.
// Rebuild constructs a new mapping off to the side and swaps it in, so readers
// never observe a cleared or half-filled index.
type FileIndex struct {
	mu          sync.RWMutex
	files       map[string]*FileRecord // key: relative path (forward slashes)
	sortedPaths []string               // sorted for consistent iteration
	built       bool
	rebuilding  bool
	journal     []mutation
	lastRebuild RebuildStats
	observers   []Observer
	notices     []func() // queued observer calls, guarded by mu
	notifyMu    sync.Mutex
	rebuilds    singleflight.Group
}

// NewFileIndex creates a new empty, never-built index.
func NewFileIndex() *FileIndex {
	return &FileIndex{
		files:       make(map[string]*FileRecord),
		sortedPaths: make([]string, 0),
	}
}

// AddObserver registers an observer and primes it with the current contents.
func (fi *FileIndex) AddObserver(observer Observer) {
	fi.mu.Lock()
	fi.observers = append(fi.observers, observer)
	snapshot := fi.allLocked()
	fi.notices = append(fi.notices, func() { observer.Reset(snapshot) })
	fi.mu.Unlock()

	fi.notify()
}

// queueLocked records an observer call for the observers registered right now.
// Must be called with mu held.
func (fi *FileIndex) queueLocked(call func(observer Observer)) {
	if len(fi.observers) == 0 {
		return
	}
	observers := fi.observers
	fi.notices = append(fi.notices, func() {
		for _, observer := range observers {
			call(observer)
		}
	})
}

// notify runs queued observer calls in order. Whoever holds notifyMu drains the queue,
// so by the time notify returns every call queued before it has run.
func (fi *FileIndex) notify() {
	fi.notifyMu.Lock()
	defer fi.notifyMu.Unlock()

	fi.mu.Lock()
	pending := fi.notices
	fi.notices = nil
	fi.mu.Unlock()

	for _, call := range pending {
		call()
	}
}

// Set adds or replaces the record stored under file.RelativePath.
func (fi *FileIndex) Set(file *FileRecord) {
	fi.mu.Lock()
	if fi.rebuilding {
		fi.journal = append(fi.journal, mutation{kind: mutationSet, file: file})
	}
	setLocked(fi.files, &fi.sortedPaths, file)
	fi.queueLocked(func(observer Observer) { observer.Upsert(file) })
	fi.mu.Unlock()

	fi.notify()
}

// Delete removes a record by its relative path. Missing keys are a no-op.
func (fi *FileIndex) Delete(relativePath string) {
	fi.mu.Lock()
	if fi.rebuilding {
		fi.journal = append(fi.journal, mutation{kind: mutationDelete, path: relativePath})
	}
	if deleteLocked(fi.files, &fi.sortedPaths, relativePath) {
		fi.queueLocked(func(observer Observer) { observer.Remove(relativePath) })
	}
	fi.mu.Unlock()

	fi.notify()
}

// DeleteTree removes every record below the directory relativeDir.
// Returns the number of records removed.
func (fi *FileIndex) DeleteTree(relativeDir string) int {
	fi.mu.Lock()
	if fi.rebuilding {
		fi.journal = append(fi.journal, mutation{kind: mutationDeleteTree, path: relativeDir})
	}
	removed := deleteTreeLocked(fi.files, &fi.sortedPaths, relativeDir)
	if len(removed) > 0 {
		fi.queueLocked(func(observer Observer) {
			for _, relativePath := range removed {
				observer.Remove(relativePath)
			}
		})
	}
	fi.mu.Unlock()

	fi.notify()
	return len(removed)
}

// Get returns the record for a relative path.
func (fi *FileIndex) Get(relativePath string) (*FileRecord, bool) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	file, ok := fi.files[relativePath]
	return file, ok
}

// All returns a snapshot of all records sorted by relative path.
func (fi *FileIndex) All() []*FileRecord {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.allLocked()
}

func (fi *FileIndex) allLocked() []*FileRecord {
	result := make([]*FileRecord, 0, len(fi.sortedPaths))
	for _, path := range fi.sortedPaths {
		if file, ok := fi.files[path]; ok {
			result = append(result, file)
		}
	}
	return result
}

// Count returns the number of indexed files.
func (fi *FileIndex) Count() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return len(fi.files)
}

// TotalSizeBytes returns the total size of all indexed files.
func (fi *FileIndex) TotalSizeBytes() int64 {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	var totalSize int64
	for _, file := range fi.files {
		totalSize += file.SizeBytes
	}
	return totalSize
}

// Built reports whether at least one rebuild has completed.
func (fi *FileIndex) Built() bool {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.built
}

// LastRebuild returns the stats of the most recent completed rebuild.
func (fi *FileIndex) LastRebuild() RebuildStats {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.lastRebuild
}

// Glob returns all records whose relative path matches a doublestar pattern, sorted by path.
func (fi *FileIndex) Glob(pattern string) ([]*FileRecord, error) {
	// Normalize pattern to forward slashes
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	fi.mu.RLock()
	defer fi.mu.RUnlock()

	var results []*FileRecord
	for _, path := range fi.sortedPaths {
		matched, err := doublestar.Match(pattern, path)
		if err != nil || !matched {
			continue
		}
		if file, ok := fi.files[path]; ok {
			results = append(results, file)
		}
	}
	return results, nil
}

// EnsureBuilt rebuilds the index from source if it has never been built.
func (fi *FileIndex) EnsureBuilt(ctx context.Context, source Source) error {
	if fi.Built() {
		return nil
	}
	_, err := fi.Rebuild(ctx, source)
	return err
}

// Rebuild replaces the whole mapping with a fresh scan of source.
// Concurrent calls share the in-flight rebuild. Mutations applied while the scan runs
// are replayed onto the new mapping before it becomes visible.
// The shared scan does not stop when one caller's ctx is done; that caller just stops waiting.
func (fi *FileIndex) Rebuild(ctx context.Context, source Source) (RebuildStats, error) {
	done := fi.rebuilds.DoChan("rebuild", func() (any, error) {
		return fi.rebuild(context.WithoutCancel(ctx), source)
	})

	select {
	case <-ctx.Done():
		return RebuildStats{}, ctx.Err()
	case result := <-done:
		if result.Err != nil {
			return RebuildStats{}, result.Err
		}
		return result.Val.(RebuildStats), nil
	}
}

func (fi *FileIndex) rebuild(ctx context.Context, source Source) (RebuildStats, error) {
	start := time.Now()

	fi.mu.Lock()
	fi.rebuilding = true
	fi.journal = nil
	fi.mu.Unlock()

	scanned, err := source.Scan(ctx)
	if err != nil {
		fi.mu.Lock()
		fi.rebuilding = false
		fi.journal = nil
		fi.mu.Unlock()
		return RebuildStats{}, fmt.Errorf("scanning: %w", err)
	}

	// Build the replacement without holding the lock
	files := make(map[string]*FileRecord, len(scanned))
	sortedPaths := make([]string, 0, len(scanned))
	for _, file := range scanned {
		if _, exists := files[file.RelativePath]; !exists {
			sortedPaths = append(sortedPaths, file.RelativePath)
		}
		files[file.RelativePath] = file
	}
	slices.Sort(sortedPaths)

	fi.mu.Lock()

	for _, m := range fi.journal {
		switch m.kind {
		case mutationSet:
			// The scan may have read the same file after the event captured it
			if current, ok := files[m.file.RelativePath]; ok && current.ModTime.After(m.file.ModTime) {
				continue
			}
			setLocked(files, &sortedPaths, m.file)
		case mutationDelete:
			deleteLocked(files, &sortedPaths, m.path)
		case mutationDeleteTree:
			deleteTreeLocked(files, &sortedPaths, m.path)
		}
	}

	stats := diffStats(fi.files, files)
	stats.Replayed = len(fi.journal)
	stats.Duration = time.Since(start)
	stats.FinishedAt = time.Now()

	fi.files = files
	fi.sortedPaths = sortedPaths
	fi.built = true
	fi.rebuilding = false
	fi.journal = nil
	fi.lastRebuild = stats

	all := fi.allLocked()
	fi.queueLocked(func(observer Observer) { observer.Reset(all) })
	fi.mu.Unlock()

	fi.notify()
	return stats, nil
}

// diffStats compares the previous mapping with its replacement.
func diffStats(previous map[string]*FileRecord, current map[string]*FileRecord) RebuildStats {
	var stats RebuildStats
	for path, file := range current {
		stats.Files++
		stats.TotalBytes += file.SizeBytes
		old, existed := previous[path]
		switch {
		case !existed:
			stats.Added++
		case !old.sameMetadata(file):
			stats.Changed++
		}
	}
	for path := range previous {
		if _, exists := current[path]; !exists {
			stats.Removed++
		}
	}
	return stats
}

func setLocked(files map[string]*FileRecord, sortedPaths *[]string, file *FileRecord) {
	_, exists := files[file.RelativePath]
	files[file.RelativePath] = file
	if !exists {
		idx, _ := slices.BinarySearch(*sortedPaths, file.RelativePath)
		*sortedPaths = slices.Insert(*sortedPaths, idx, file.RelativePath)
	}
}

func deleteLocked(files map[string]*FileRecord, sortedPaths *[]string, relativePath string) bool {
	if _, exists := files[relativePath]; !exists {
		return false
	}
	delete(files, relativePath)

	// Remove from sorted slice
	if idx, found := slices.BinarySearch(*sortedPaths, relativePath); found {
		*sortedPaths = slices.Delete(*sortedPaths, idx, idx+1)
	}
	return true
}

func deleteTreeLocked(files map[string]*FileRecord, sortedPaths *[]string, relativeDir string) []string {
	prefix := strings.TrimSuffix(relativeDir, "/") + "/"
	if prefix == "/" {
		prefix = ""
	}

	// Keys under prefix are contiguous in the sorted slice
	start, _ := slices.BinarySearch(*sortedPaths, prefix)
	end := start
	for end < len(*sortedPaths) && strings.HasPrefix((*sortedPaths)[end], prefix) {
		end++
	}
	if start == end {
		return nil
	}

	removed := slices.Clone((*sortedPaths)[start:end])
	for _, path := range removed {
		delete(files, path)
	}
	*sortedPaths = slices.Delete(*sortedPaths, start, end)
	return removed
}
