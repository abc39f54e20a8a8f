package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/mdindex/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the docs_reindex tool.
type ReindexArgs struct{}

// ReindexFunc performs a full rebuild. docs.Service.Reindex satisfies it.
type ReindexFunc func(ctx context.Context) (index.RebuildStats, error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes a docs_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("docs_reindex started")

	stats, err := h.DoReindex(ctx)
	if err != nil {
		h.Logger.Error("docs_reindex failed", "error", err)
		return errorResult("Reindex error: %v", err), nil, nil
	}

	h.Logger.Info("docs_reindex complete",
		"files", stats.Files,
		"totalSize", stats.TotalBytes,
		"elapsed", stats.Duration,
	)

	output := fmt.Sprintf("Reindex complete: %d documents (%s) in %s\nadded %d, removed %d, changed %d",
		stats.Files, formatFileSize(stats.TotalBytes), stats.Duration.Round(time.Millisecond),
		stats.Added, stats.Removed, stats.Changed)

	return textResult(output), nil, nil
}
