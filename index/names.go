package index

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const nameIndexBatchSize = 200

// NameIndex provides typo-tolerant lookup over file names and paths using an in-memory Bleve index.
// Only metadata is indexed; file contents never enter it.
type NameIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// nameDocument is the document structure stored in Bleve.
type nameDocument struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewNameIndex creates an empty in-memory name index.
func NewNameIndex(logger *slog.Logger) (*NameIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &NameIndex{index: bleveIndex, logger: logger}, nil
}

// buildNameMapping creates the Bleve index mapping for file names and paths.
func buildNameMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Store = false
	nameFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Store = false
	pathFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Upsert indexes or re-indexes one record.
func (ni *NameIndex) Upsert(file *FileRecord) {
	ni.mu.Lock()
	defer ni.mu.Unlock()

	if err := ni.index.Index(file.RelativePath, toNameDocument(file)); err != nil {
		ni.logger.Warn("name index update failed", "path", file.RelativePath, "error", err)
	}
}

// Remove drops one record.
func (ni *NameIndex) Remove(relativePath string) {
	ni.mu.Lock()
	defer ni.mu.Unlock()

	if err := ni.index.Delete(relativePath); err != nil {
		ni.logger.Warn("name index delete failed", "path", relativePath, "error", err)
	}
}

// Reset replaces the whole name index with files. The new index is filled before it is swapped in.
func (ni *NameIndex) Reset(files []*FileRecord) {
	fresh, err := bleve.NewMemOnly(buildNameMapping())
	if err != nil {
		ni.logger.Error("creating name index failed", "error", err)
		return
	}

	batch := fresh.NewBatch()
	for i, file := range files {
		if err := batch.Index(file.RelativePath, toNameDocument(file)); err != nil {
			ni.logger.Warn("name index batch add failed", "path", file.RelativePath, "error", err)
			continue
		}
		if (i+1)%nameIndexBatchSize == 0 {
			if err := fresh.Batch(batch); err != nil {
				ni.logger.Warn("name index batch failed", "error", err)
			}
			batch = fresh.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := fresh.Batch(batch); err != nil {
			ni.logger.Warn("name index batch failed", "error", err)
		}
	}

	ni.mu.Lock()
	old := ni.index
	ni.index = fresh
	ni.mu.Unlock()

	if err := old.Close(); err != nil {
		ni.logger.Debug("closing previous name index", "error", err)
	}
}

// Search returns relative paths whose name or path fuzzily matches the query,
// best match first, and the total hit count.
func (ni *NameIndex) Search(queryString string, maxResults int) ([]string, int, error) {
	queryString = strings.TrimSpace(queryString)
	if queryString == "" {
		return nil, 0, nil
	}

	nameQuery := bleve.NewMatchQuery(queryString)
	nameQuery.SetField("name")
	nameQuery.SetFuzziness(1)

	pathQuery := bleve.NewMatchQuery(queryString)
	pathQuery.SetField("path")
	pathQuery.SetFuzziness(1)

	prefixQuery := bleve.NewPrefixQuery(strings.ToLower(queryString))
	prefixQuery.SetField("name")

	searchRequest := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(nameQuery, pathQuery, prefixQuery))
	searchRequest.Size = maxResults

	ni.mu.RLock()
	defer ni.mu.RUnlock()

	searchResults, err := ni.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching name index: %w", err)
	}

	paths := make([]string, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		paths = append(paths, hit.ID)
	}
	return paths, int(searchResults.Total), nil
}

// DocumentCount returns the number of documents in the Bleve index.
func (ni *NameIndex) DocumentCount() uint64 {
	ni.mu.RLock()
	defer ni.mu.RUnlock()
	count, _ := ni.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (ni *NameIndex) Close() error {
	ni.mu.Lock()
	defer ni.mu.Unlock()
	return ni.index.Close()
}

// nameSeparators splits names into words so "installation.md" indexes as "installation md".
var nameSeparators = strings.NewReplacer(".", " ", "_", " ", "-", " ", "/", " ")

func toNameDocument(file *FileRecord) nameDocument {
	return nameDocument{
		Name: nameSeparators.Replace(file.Name),
		Path: nameSeparators.Replace(file.RelativePath),
	}
}
