package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
)

// FormatSearchResult formats search hits as human-readable text, one block per document.
func FormatSearchResult(result search.Result) string {
	if len(result.Hits) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	if result.Truncated {
		builder.WriteString(fmt.Sprintf("Found %d matching documents (showing first %d):\n\n", result.Total, len(result.Hits)))
	} else {
		builder.WriteString(fmt.Sprintf("Found %d matching documents:\n\n", result.Total))
	}

	for _, hit := range result.Hits {
		builder.WriteString(fmt.Sprintf("  %s  (%s)\n", hit.Record.RelativePath, formatFileSize(hit.Record.SizeBytes)))
		if hit.Snippet != nil {
			builder.WriteString(fmt.Sprintf("    %s\n", oneLine(hit.Snippet.String())))
		}
	}

	return builder.String()
}

// FormatFileList formats indexed records as human-readable text.
func FormatFileList(records []*index.FileRecord) string {
	if len(records) == 0 {
		return "No documents matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d documents:\n\n", len(records)))
	for _, record := range records {
		builder.WriteString(fmt.Sprintf("  %s  (%s)\n", record.RelativePath, formatFileSize(record.SizeBytes)))
	}
	return builder.String()
}

// FormatListing formats one directory level: subdirectories first, then documents.
func FormatListing(listing scanner.Listing) string {
	dir := listing.RelativePath
	if dir == "" {
		dir = "."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s ──\n", dir))
	if len(listing.Dirs) == 0 && len(listing.Files) == 0 {
		builder.WriteString("  (empty)\n")
		return builder.String()
	}
	for _, entry := range listing.Dirs {
		builder.WriteString(fmt.Sprintf("  %s/\n", entry.Name))
	}
	for _, record := range listing.Files {
		builder.WriteString(fmt.Sprintf("  %s  (%s)\n", record.Name, formatFileSize(record.SizeBytes)))
	}
	return builder.String()
}

// FormatFileContent formats a file's content with line numbers, similar to the built-in Read tool.
// Output format: header line with path and line count, followed by numbered lines.
func FormatFileContent(filePath string, content string) string {
	lines := strings.Split(content, "\n")
	lineCount := len(lines)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%d lines) ──\n", filePath, lineCount))

	// Calculate width needed for line numbers
	width := len(fmt.Sprintf("%d", lineCount))

	for i, line := range lines {
		builder.WriteString(fmt.Sprintf("%*d│ %s\n", width, i+1, line))
	}

	return builder.String()
}

// oneLine collapses line breaks so a snippet prints on a single line.
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
