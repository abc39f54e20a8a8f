package main

import (
	"context"
	"testing"
	"time"

	"github.com/lexandro/mdindex/config"
)

func Test_buildStack_RejectsMissingRoot(t *testing.T) {
	if _, err := buildStack(&config.Config{Root: "/definitely/not/here"}, testLogger()); err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func Test_stack_ServiceReportsWatcher(t *testing.T) {
	s := newTestStack(t, map[string]string{"docs/a.md": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.startWatching(ctx)
	service := s.newService()

	status := service.Status()
	if status.Files != 1 {
		t.Errorf("expected 1 file, got %d", status.Files)
	}
	if status.NameIndexDocs != 1 {
		t.Errorf("expected name index to mirror the file index, got %d", status.NameIndexDocs)
	}
	if s.watcher != nil && status.WatchedDirs < 2 {
		t.Errorf("expected root and docs/ to be watched, got %d", status.WatchedDirs)
	}
}

func Test_run_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{Root: t.TempDir(), HTTPAddr: "127.0.0.1:0", LogLevel: "info"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, testLogger()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func Test_setupLogger_FallsBackToStderr(t *testing.T) {
	logger := setupLogger("debug", "/nonexistent-dir/mdindex.log")
	if !logger.Enabled(context.Background(), -4) {
		t.Error("expected debug level to be enabled")
	}
}
