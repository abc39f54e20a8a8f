package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexandro/mdindex/docs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReadArgs defines the input parameters for the docs_read tool.
type ReadArgs struct {
	Path string `json:"path" jsonschema:"Document path relative to the document root (e.g. guides/setup.md)"`
}

// ReadHandler holds the dependencies for the read tool.
type ReadHandler struct {
	Service *docs.Service
	Logger  *slog.Logger
}

// Handle processes a docs_read request.
func (h *ReadHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Path == "" {
		h.Logger.Warn("docs_read called with empty path")
		return errorResult("Error: path parameter is required"), nil, nil
	}

	doc, err := h.Service.Read(ctx, args.Path)
	if err != nil {
		h.Logger.Info("docs_read failed", "path", args.Path, "error", err)
		return serviceErrorResult(args.Path, err), nil, nil
	}

	h.Logger.Info("docs_read", "path", doc.Record.RelativePath, "size", len(doc.Content), "elapsed", time.Since(start))

	return textResult(FormatFileContent(doc.Record.RelativePath, string(doc.Content))), nil, nil
}
