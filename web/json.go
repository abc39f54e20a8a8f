package web

import (
	"time"

	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
)

type fileJSON struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func toFileJSON(record *index.FileRecord) fileJSON {
	return fileJSON{
		Name:    record.Name,
		Path:    record.RelativePath,
		Size:    record.SizeBytes,
		ModTime: record.ModTime,
	}
}

func toFilesJSON(records []*index.FileRecord) []fileJSON {
	files := make([]fileJSON, 0, len(records))
	for _, record := range records {
		files = append(files, toFileJSON(record))
	}
	return files
}

type dirJSON struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type treeJSON struct {
	Path  string     `json:"path"`
	Dirs  []dirJSON  `json:"dirs"`
	Files []fileJSON `json:"files"`
}

func toTreeJSON(listing scanner.Listing) treeJSON {
	dirs := make([]dirJSON, 0, len(listing.Dirs))
	for _, dir := range listing.Dirs {
		dirs = append(dirs, dirJSON{Name: dir.Name, Path: dir.RelativePath})
	}
	return treeJSON{Path: listing.RelativePath, Dirs: dirs, Files: toFilesJSON(listing.Files)}
}

type hitJSON struct {
	fileJSON
	Snippet *search.Snippet `json:"snippet,omitempty"`
}

type searchJSON struct {
	Total     int       `json:"total"`
	Truncated bool      `json:"truncated"`
	Hits      []hitJSON `json:"hits"`
}

func toSearchJSON(result search.Result) searchJSON {
	hits := make([]hitJSON, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, hitJSON{fileJSON: toFileJSON(hit.Record), Snippet: hit.Snippet})
	}
	return searchJSON{Total: result.Total, Truncated: result.Truncated, Hits: hits}
}

type rebuildJSON struct {
	Files      int       `json:"files"`
	TotalBytes int64     `json:"total_bytes"`
	Added      int       `json:"added"`
	Removed    int       `json:"removed"`
	Changed    int       `json:"changed"`
	Replayed   int       `json:"replayed"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

func toRebuildJSON(stats index.RebuildStats) rebuildJSON {
	return rebuildJSON{
		Files:      stats.Files,
		TotalBytes: stats.TotalBytes,
		Added:      stats.Added,
		Removed:    stats.Removed,
		Changed:    stats.Changed,
		Replayed:   stats.Replayed,
		DurationMs: stats.Duration.Milliseconds(),
		FinishedAt: stats.FinishedAt,
	}
}

type statusJSON struct {
	Root          string       `json:"root"`
	Extensions    []string     `json:"extensions"`
	Files         int          `json:"files"`
	TotalBytes    int64        `json:"total_bytes"`
	NameIndexDocs uint64       `json:"name_index_docs"`
	WatchedDirs   int          `json:"watched_dirs"`
	StartedAt     time.Time    `json:"started_at"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	LastRebuild   *rebuildJSON `json:"last_rebuild,omitempty"`
}

func toStatusJSON(status docs.Status) statusJSON {
	out := statusJSON{
		Root:          status.RootDir,
		Extensions:    status.Extensions,
		Files:         status.Files,
		TotalBytes:    status.TotalBytes,
		NameIndexDocs: status.NameIndexDocs,
		WatchedDirs:   status.WatchedDirs,
		StartedAt:     status.StartedAt,
		UptimeSeconds: int64(status.Uptime.Seconds()),
	}
	if status.Built {
		lastRebuild := toRebuildJSON(status.LastRebuild)
		out.LastRebuild = &lastRebuild
	}
	return out
}
