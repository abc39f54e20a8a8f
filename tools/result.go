package tools

import (
	"errors"
	"fmt"

	"github.com/lexandro/mdindex/docs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// serviceErrorResult turns a docs error into a tool error. Access denials carry no path details.
func serviceErrorResult(path string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, docs.ErrAccessDenied):
		return errorResult("Access denied: path is outside the document root")
	case errors.Is(err, docs.ErrNotFound):
		return errorResult("Not found: %s", path)
	case errors.Is(err, docs.ErrNotADocument):
		return errorResult("Not a document: %s", path)
	case errors.Is(err, docs.ErrNotADirectory):
		return errorResult("Not a directory: %s", path)
	default:
		return errorResult("Error: %v", err)
	}
}
