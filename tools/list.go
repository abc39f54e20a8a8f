package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/mdindex/docs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListArgs defines the input parameters for the docs_list tool.
type ListArgs struct {
	Path    string `json:"path,omitempty" jsonschema:"Directory relative to the document root (default: the root itself)"`
	Pattern string `json:"pattern,omitempty" jsonschema:"Optional glob (e.g. guides/**/*.md). When set, lists all matching documents instead of one directory level"`
}

// ListHandler holds the dependencies for the list tool.
type ListHandler struct {
	Service *docs.Service
	Logger  *slog.Logger
}

// Handle processes a docs_list request.
func (h *ListHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern != "" {
		records, err := h.Service.Files(ctx, args.Pattern)
		if err != nil {
			h.Logger.Warn("docs_list failed", "pattern", args.Pattern, "error", err)
			return serviceErrorResult(args.Pattern, err), nil, nil
		}
		h.Logger.Info("docs_list", "pattern", args.Pattern, "results", len(records), "elapsed", time.Since(start))
		return textResult(FormatFileList(records)), nil, nil
	}

	listing, err := h.Service.List(args.Path)
	if err != nil {
		h.Logger.Warn("docs_list failed", "path", args.Path, "error", err)
		return serviceErrorResult(args.Path, err), nil, nil
	}

	h.Logger.Info("docs_list",
		"path", args.Path,
		"dirs", len(listing.Dirs),
		"files", len(listing.Files),
		"elapsed", time.Since(start),
	)

	return textResult(FormatListing(listing)), nil, nil
}
