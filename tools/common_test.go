package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexandro/mdindex/docs"
	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
	"github.com/lexandro/mdindex/index"
	"github.com/lexandro/mdindex/scanner"
	"github.com/lexandro/mdindex/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testDocuments = map[string]string{
	"docs/README.md":  "# Readme\na sample markdown file\n",
	"docs/install.md": "# Install\nrun the installer\n",
	"notes/todo.md":   "- buy milk\n",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a docs.Service over a temp root with an unbuilt index.
func newTestService(t *testing.T, files map[string]string) (*docs.Service, string) {
	t.Helper()
	root, err := guard.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for relPath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	logger := testLogger()
	rules := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root})
	sc := scanner.New(root, rules, logger)
	fi := index.NewFileIndex()

	service := docs.NewService(docs.Options{
		Files:   fi,
		Scanner: sc,
		Rules:   rules,
		Engine:  search.NewEngine(fi, nil, root, logger),
		Logger:  logger,
	})
	if _, err := service.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	return service, root
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in tool result")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
