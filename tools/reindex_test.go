package tools

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lexandro/mdindex/index"
)

func Test_ReindexHandler_Success(t *testing.T) {
	h := &ReindexHandler{
		DoReindex: func(ctx context.Context) (index.RebuildStats, error) {
			return index.RebuildStats{Files: 42, TotalBytes: 1024 * 1024, Added: 2, Duration: 1500 * time.Millisecond}, nil
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ReindexArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Reindex complete") {
		t.Errorf("expected 'Reindex complete', got:\n%s", text)
	}
	if !strings.Contains(text, "42 documents") {
		t.Errorf("expected document count '42', got:\n%s", text)
	}
	if !strings.Contains(text, "1.0 MB") {
		t.Errorf("expected formatted size '1.0 MB', got:\n%s", text)
	}
	if !strings.Contains(text, "1.5s") {
		t.Errorf("expected elapsed '1.5s', got:\n%s", text)
	}
	if !strings.Contains(text, "added 2") {
		t.Errorf("expected diff counts, got:\n%s", text)
	}
}

func Test_ReindexHandler_Error(t *testing.T) {
	h := &ReindexHandler{
		DoReindex: func(ctx context.Context) (index.RebuildStats, error) {
			return index.RebuildStats{}, fmt.Errorf("disk full")
		},
		Logger: testLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ReindexArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for failed reindex")
	}
	if text := resultText(t, result); !strings.Contains(text, "disk full") {
		t.Errorf("expected error message 'disk full', got: %s", text)
	}
}

func Test_ReindexHandler_WithService(t *testing.T) {
	service, _ := newTestService(t, testDocuments)
	h := &ReindexHandler{DoReindex: service.Reindex, Logger: testLogger()}

	result, _, err := h.Handle(context.Background(), nil, ReindexArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "3 documents") {
		t.Errorf("expected 3 documents, got:\n%s", text)
	}
}
