package tools

import (
	"context"
	"strings"
	"testing"
)

func newTestListHandler(t *testing.T) *ListHandler {
	t.Helper()
	service, _ := newTestService(t, testDocuments)
	return &ListHandler{Service: service, Logger: testLogger()}
}

func Test_ListHandler_Root(t *testing.T) {
	h := newTestListHandler(t)

	result, _, err := h.Handle(context.Background(), nil, ListArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "── . ──") {
		t.Errorf("expected root header, got:\n%s", text)
	}
	if strings.Index(text, "docs/") > strings.Index(text, "notes/") {
		t.Errorf("expected sorted directories, got:\n%s", text)
	}
}

func Test_ListHandler_Directory(t *testing.T) {
	h := newTestListHandler(t)

	result, _, err := h.Handle(context.Background(), nil, ListArgs{Path: "docs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "README.md") || !strings.Contains(text, "install.md") {
		t.Errorf("expected both documents, got:\n%s", text)
	}
}

func Test_ListHandler_Pattern(t *testing.T) {
	h := newTestListHandler(t)

	result, _, err := h.Handle(context.Background(), nil, ListArgs{Pattern: "**/todo.md"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Found 1 documents") || !strings.Contains(text, "notes/todo.md") {
		t.Errorf("expected one glob match, got:\n%s", text)
	}
}

func Test_ListHandler_Errors(t *testing.T) {
	h := newTestListHandler(t)

	tests := []struct {
		args ListArgs
		want string
	}{
		{ListArgs{Path: "../"}, "Access denied"},
		{ListArgs{Path: "missing"}, "Not found"},
		{ListArgs{Path: "notes/todo.md"}, "Not a directory"},
		{ListArgs{Pattern: "[bad"}, "invalid glob pattern"},
	}
	for _, tt := range tests {
		result, _, err := h.Handle(context.Background(), nil, tt.args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("%+v: expected IsError=true", tt.args)
			continue
		}
		if text := resultText(t, result); !strings.Contains(text, tt.want) {
			t.Errorf("%+v: expected %q, got: %s", tt.args, tt.want, text)
		}
	}
}
