package watcher

import (
	"sort"
	"testing"
	"time"
)

const testWindow = 50 * time.Millisecond

func receiveEvent(t *testing.T, d *Debouncer, timeout time.Duration) Event {
	t.Helper()
	select {
	case event := <-d.Output():
		return event
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debounced event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, d *Debouncer, wait time.Duration) {
	t.Helper()
	select {
	case event := <-d.Output():
		t.Fatalf("expected no further events, got %+v", event)
	case <-time.After(wait):
	}
}

func Test_Debouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	d.Add("/root/a.md", Modified)

	event := receiveEvent(t, d, 500*time.Millisecond)
	if event.Path != "/root/a.md" {
		t.Errorf("expected path '/root/a.md', got '%s'", event.Path)
	}
	if event.Kind != Modified {
		t.Errorf("expected Modified, got %s", event.Kind)
	}
}

func Test_Debouncer_BurstCollapses(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	for i := 0; i < 10; i++ {
		d.Add("/root/a.md", Modified)
		time.Sleep(testWindow / 5)
	}

	event := receiveEvent(t, d, 500*time.Millisecond)
	if event.Kind != Modified {
		t.Errorf("expected Modified, got %s", event.Kind)
	}
	expectNoEvent(t, d, 2*testWindow)
}

func Test_Debouncer_AddedNotDowngraded(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	d.Add("/root/new.md", Added)
	d.Add("/root/new.md", Modified)

	event := receiveEvent(t, d, 500*time.Millisecond)
	if event.Kind != Added {
		t.Errorf("expected Added to survive following writes, got %s", event.Kind)
	}
}

func Test_Debouncer_LatestKindWins(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	d.Add("/root/a.md", Added)
	d.Add("/root/a.md", Removed)

	event := receiveEvent(t, d, 500*time.Millisecond)
	if event.Kind != Removed {
		t.Errorf("expected Removed, got %s", event.Kind)
	}
}

func Test_Debouncer_PathsAreIndependent(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	d.Add("/root/a.md", Modified)
	d.Add("/root/b.md", Added)
	d.Add("/root/c.md", Removed)

	var paths []string
	for i := 0; i < 3; i++ {
		paths = append(paths, receiveEvent(t, d, 500*time.Millisecond).Path)
	}
	sort.Strings(paths)

	expected := []string{"/root/a.md", "/root/b.md", "/root/c.md"}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("event[%d]: expected path '%s', got '%s'", i, expected[i], paths[i])
		}
	}
}

func Test_Debouncer_BusyPathDoesNotStarveQuietPath(t *testing.T) {
	d := NewDebouncer(testWindow)
	defer d.Close()

	d.Add("/root/quiet.md", Modified)
	deadline := time.Now().Add(4 * testWindow)
	for time.Now().Before(deadline) {
		d.Add("/root/busy.md", Modified)
		time.Sleep(testWindow / 5)
	}

	event := receiveEvent(t, d, 10*time.Millisecond)
	if event.Path != "/root/quiet.md" {
		t.Errorf("expected quiet path to be emitted while busy path is still changing, got %s", event.Path)
	}
}

func Test_Debouncer_CloseDropsPending(t *testing.T) {
	d := NewDebouncer(testWindow)

	d.Add("/root/a.md", Modified)
	d.Close()
	d.Add("/root/b.md", Modified)

	if d.Pending() != 0 {
		t.Errorf("expected no pending events after Close, got %d", d.Pending())
	}
	expectNoEvent(t, d, 2*testWindow)
}

func Test_coalesce(t *testing.T) {
	tests := []struct {
		pending, next, want EventKind
	}{
		{Added, Modified, Added},
		{Added, Removed, Removed},
		{Removed, Added, Added},
		{Modified, Modified, Modified},
		{Modified, Removed, Removed},
	}
	for _, tt := range tests {
		if got := coalesce(tt.pending, tt.next); got != tt.want {
			t.Errorf("coalesce(%s, %s) = %s, want %s", tt.pending, tt.next, got, tt.want)
		}
	}
}
