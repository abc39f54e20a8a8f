package scanner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/mdindex/guard"
	"github.com/lexandro/mdindex/ignore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestScanner(t *testing.T, files map[string]string) (*Scanner, string) {
	t.Helper()
	root, err := guard.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeTree(t, root, files)
	rules := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root})
	return New(root, rules, testLogger()), root
}

func Test_Scanner_Scan_FindsDocumentsOnly(t *testing.T) {
	s, root := newTestScanner(t, map[string]string{
		"docs/README.md":                 "a sample markdown file",
		"notes/todo.md":                  "- [ ] buy milk",
		"notes/image.png":                "binary",
		"main.go":                        "package main",
		".hidden/secret.md":              "hidden",
		"notes/.draft.md":                "hidden file",
		"node_modules/pkg/README.md":     "dependency",
		"build/output.md":                "build output",
		"deep/a/b/c/d/e/f/g/h/i/deep.md": "deep",
	})

	records, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[string]bool)
	for _, r := range records {
		got[r.RelativePath] = true
		if !guard.IsContained(r.AbsolutePath, root) {
			t.Errorf("record %s escapes root: %s", r.RelativePath, r.AbsolutePath)
		}
		if filepath.Join(root, filepath.FromSlash(r.RelativePath)) != r.AbsolutePath {
			t.Errorf("record %s does not resolve to its absolute path", r.RelativePath)
		}
	}

	expected := []string{"docs/README.md", "notes/todo.md", "deep/a/b/c/d/e/f/g/h/i/deep.md"}
	if len(records) != len(expected) {
		t.Errorf("expected %d records, got %d: %v", len(expected), len(records), got)
	}
	for _, p := range expected {
		if !got[p] {
			t.Errorf("expected %s to be scanned", p)
		}
	}
}

func Test_Scanner_Scan_RecordsMetadata(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{"docs/README.md": "a sample markdown file"})

	records, _ := s.Scan(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Name != "README.md" {
		t.Errorf("expected name README.md, got %s", r.Name)
	}
	if r.SizeBytes != int64(len("a sample markdown file")) {
		t.Errorf("unexpected size %d", r.SizeBytes)
	}
	if r.ModTime.IsZero() {
		t.Error("expected modification time to be set")
	}
}

func Test_Scanner_Scan_UnreadableDirectoryIsPartialFailure(t *testing.T) {
	s, root := newTestScanner(t, map[string]string{
		"open/a.md":   "a",
		"locked/b.md": "b",
	})
	var logs bytes.Buffer
	s.logger = slog.New(slog.NewTextHandler(&logs, nil))

	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Skipf("cannot change permissions: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })
	if _, err := os.ReadDir(locked); err == nil {
		t.Skip("permissions not enforced for this user")
	}

	records, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("expected scan to complete, got %v", err)
	}
	if len(records) != 1 || records[0].RelativePath != "open/a.md" {
		t.Errorf("expected only open/a.md, got %d records", len(records))
	}
	if !strings.Contains(logs.String(), "cannot list directory") {
		t.Errorf("expected a warning to be logged, got: %s", logs.String())
	}
}

func Test_Scanner_Scan_Cancelled(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func Test_Scanner_Scan_SkipsSymlinks(t *testing.T) {
	s, root := newTestScanner(t, map[string]string{"real.md": "real"})
	outside := t.TempDir()
	os.WriteFile(filepath.Join(outside, "secret.md"), []byte("secret"), 0644)
	if err := os.Symlink(filepath.Join(outside, "secret.md"), filepath.Join(root, "link.md")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	records, _ := s.Scan(context.Background())
	if len(records) != 1 || records[0].RelativePath != "real.md" {
		t.Errorf("expected only real.md, got %d records", len(records))
	}
}

func Test_Scanner_ListOneLevel_Sorted(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{
		"b.md":          "b",
		"A.md":          "a",
		"a.md":          "a",
		"zeta/x.md":     "x",
		"Alpha/y.md":    "y",
		"beta/z.md":     "z",
		"notes.txt":     "ignored",
		".git/HEAD.md":  "ignored",
		"vendor/pkg.md": "ignored",
	})

	listing, err := s.ListOneLevel("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var dirNames []string
	for _, d := range listing.Dirs {
		dirNames = append(dirNames, d.Name)
	}
	if strings.Join(dirNames, ",") != "Alpha,beta,zeta" {
		t.Errorf("unexpected dirs order: %v", dirNames)
	}

	var fileNames []string
	for _, f := range listing.Files {
		fileNames = append(fileNames, f.Name)
	}
	if strings.Join(fileNames, ",") != "A.md,a.md,b.md" {
		t.Errorf("unexpected files order: %v", fileNames)
	}
}

func Test_Scanner_ListOneLevel_Subdirectory(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{"docs/guide/install.md": "x", "docs/README.md": "y"})

	listing, err := s.ListOneLevel("docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.RelativePath != "docs" {
		t.Errorf("expected relative path docs, got %s", listing.RelativePath)
	}
	if len(listing.Dirs) != 1 || listing.Dirs[0].RelativePath != "docs/guide" {
		t.Errorf("unexpected dirs: %+v", listing.Dirs)
	}
	if len(listing.Files) != 1 || listing.Files[0].RelativePath != "docs/README.md" {
		t.Errorf("unexpected files: %+v", listing.Files)
	}
}

func Test_Scanner_ListOneLevel_Traversal(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{"a.md": "a"})

	if _, err := s.ListOneLevel("../secret"); !errors.Is(err, guard.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func Test_Scanner_ListOneLevel_Errors(t *testing.T) {
	s, _ := newTestScanner(t, map[string]string{"a.md": "a", "node_modules/x.md": "x"})

	if _, err := s.ListOneLevel("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist for missing dir, got %v", err)
	}
	if _, err := s.ListOneLevel("a.md"); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory for a file, got %v", err)
	}
	if _, err := s.ListOneLevel("node_modules"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected excluded dir to look missing, got %v", err)
	}
}

func Test_Scanner_Stat(t *testing.T) {
	s, root := newTestScanner(t, map[string]string{"new.md": "hello", "x.txt": "no"})

	record, ok := s.Stat(filepath.Join(root, "new.md"))
	if !ok || record.SizeBytes != 5 || record.RelativePath != "new.md" {
		t.Errorf("unexpected stat result: %+v ok=%v", record, ok)
	}
	if _, ok := s.Stat(filepath.Join(root, "x.txt")); ok {
		t.Error("expected non-document to be rejected")
	}
	if _, ok := s.Stat(filepath.Join(root, "gone.md")); ok {
		t.Error("expected missing file to be rejected")
	}
}
