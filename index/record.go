package index

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FileRecord is the metadata kept for one indexed document.
type FileRecord struct {
	Name         string    // Base file name
	RelativePath string    // Path relative to root (forward slashes), the index key
	AbsolutePath string    // Absolute path, always under root
	SizeBytes    int64     // Last known size
	ModTime      time.Time // Last known modification time
}

// NewFileRecord builds a record for absolutePath from a single stat result.
// relativePath must already be the forward-slash key for absolutePath.
func NewFileRecord(relativePath string, absolutePath string, info fs.FileInfo) *FileRecord {
	return &FileRecord{
		Name:         filepath.Base(absolutePath),
		RelativePath: relativePath,
		AbsolutePath: absolutePath,
		SizeBytes:    info.Size(),
		ModTime:      info.ModTime(),
	}
}

// sameMetadata reports whether two records describe the same file state.
func (r *FileRecord) sameMetadata(other *FileRecord) bool {
	return r.AbsolutePath == other.AbsolutePath &&
		r.SizeBytes == other.SizeBytes &&
		r.ModTime.Equal(other.ModTime)
}
