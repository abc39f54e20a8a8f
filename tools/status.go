package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/lexandro/mdindex/docs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the docs_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Service *docs.Service
	Logger  *slog.Logger
}

// Handle processes a docs_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	status := h.Service.Status()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("docs_status",
		"files", status.Files,
		"totalSize", status.TotalBytes,
		"memory", memStats.Alloc,
		"uptime", status.Uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== mdindex Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", status.RootDir))
	builder.WriteString(fmt.Sprintf("Extensions: %s\n", strings.Join(status.Extensions, ", ")))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(status.Uptime)))
	builder.WriteString(fmt.Sprintf("Indexed documents: %d\n", status.Files))
	builder.WriteString(fmt.Sprintf("Total indexed size: %s\n", formatFileSize(status.TotalBytes)))
	builder.WriteString(fmt.Sprintf("Name index entries: %d\n", status.NameIndexDocs))
	builder.WriteString(fmt.Sprintf("Watched directories: %d\n", status.WatchedDirs))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if status.Built {
		last := status.LastRebuild
		builder.WriteString(fmt.Sprintf("\nLast rebuild: %s ago, %d documents in %s (added %d, removed %d, changed %d, replayed %d)\n",
			formatDuration(time.Since(last.FinishedAt)),
			last.Files,
			last.Duration.Round(time.Millisecond),
			last.Added, last.Removed, last.Changed, last.Replayed,
		))
	} else {
		builder.WriteString("\nLast rebuild: never\n")
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
