package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/mdindex/docs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgs defines the input parameters for the docs_search tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"Text to search for (case-insensitive)"`
	Scope string `json:"scope,omitempty" jsonschema:"name (default): file name or path; content: document text; glob: doublestar path pattern; fuzzy: typo-tolerant file name"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	Service *docs.Service
	Logger  *slog.Logger
}

// Handle processes a docs_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" {
		h.Logger.Warn("docs_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	result, err := h.Service.Search(ctx, args.Query, args.Scope)
	if err != nil {
		h.Logger.Warn("docs_search failed", "query", args.Query, "scope", args.Scope, "error", err)
		return serviceErrorResult(args.Query, err), nil, nil
	}

	h.Logger.Info("docs_search",
		"query", args.Query,
		"scope", args.Scope,
		"hits", len(result.Hits),
		"total", result.Total,
		"elapsed", time.Since(start),
	)

	return textResult(FormatSearchResult(result)), nil, nil
}
