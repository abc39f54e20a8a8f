package server

import (
	"github.com/lexandro/mdindex/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	searchHandler *tools.SearchHandler,
	listHandler *tools.ListHandler,
	readHandler *tools.ReadHandler,
	statusHandler *tools.StatusHandler,
	reindexHandler *tools.ReindexHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mdindex",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server exposes a live index of a markdown documentation tree. Every path is relative to the document root and access outside it is refused.

- Use docs_search to find documents by name, path, glob or text
- Use docs_list to browse one directory level, or to list documents matching a glob
- Use docs_read to read a document with line numbers
- The index follows file changes automatically; docs_reindex forces a full rescan`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "docs_search",
		Description: `Search the document index. At most 200 documents are returned, sorted by path; the header reports the full match count.

Scopes:
  - name (default): case-insensitive substring of file name or relative path
  - content: case-insensitive substring of document text, with a snippet around the first match
  - glob: doublestar pattern over relative paths (e.g. "guides/**/*.md")
  - fuzzy: typo-tolerant file name search (e.g. "instalation")`,
	}, searchHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "docs_list",
		Description: `List one directory level: subdirectories first, then documents, each sorted by name.
With pattern set, list every indexed document whose path matches the glob instead.`,
	}, listHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "docs_read",
		Description: `Read a document. Returns numbered lines (format: "N│ content").`,
	}, readHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "docs_status",
		Description: "Show index status: root, document count, size, watched directories, uptime and the last rebuild.",
	}, statusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "docs_reindex",
		Description: "Force a full rescan of the document root and reload ignore rules. The previous index stays visible until the new one is complete.",
	}, reindexHandler.Handle)

	return mcpServer
}
