package watcher

import (
	"sync"
	"time"
)

// DefaultStabilityWindow is how long a path must stay quiet before its event is emitted.
const DefaultStabilityWindow = 150 * time.Millisecond

// EventKind is the type of change observed for a path.
type EventKind int

const (
	Added EventKind = iota
	Modified
	Removed
	// RulesChanged is emitted when a root ignore file changes.
	RulesChanged
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case RulesChanged:
		return "rules-changed"
	default:
		return "unknown"
	}
}

// Event is a debounced change for one absolute path.
type Event struct {
	Path string
	Kind EventKind
}

// coalesce merges a new event kind into the pending one for the same path.
// A pending Added is not downgraded by later writes to the same new file.
func coalesce(pending EventKind, next EventKind) EventKind {
	if pending == Added && next == Modified {
		return Added
	}
	return next
}

type pendingEvent struct {
	kind  EventKind
	timer *time.Timer
}

// Debouncer delays each path's event until the path has been quiet for the stability window.
// Multiple events for the same path within the window are collapsed into one.
type Debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]*pendingEvent
	output  chan Event
	done    chan struct{}
	closed  bool
}

// NewDebouncer creates a debouncer with the specified stability window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultStabilityWindow
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingEvent),
		output:  make(chan Event, 256),
		done:    make(chan struct{}),
	}
}

// Output returns the channel that receives debounced events.
func (d *Debouncer) Output() <-chan Event {
	return d.output
}

// Add records an event and restarts the path's quiet timer.
func (d *Debouncer) Add(path string, kind EventKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if p, exists := d.pending[path]; exists {
		p.kind = coalesce(p.kind, kind)
		p.timer.Reset(d.window)
		return
	}

	p := &pendingEvent{kind: kind}
	p.timer = time.AfterFunc(d.window, func() { d.fire(path, p) })
	d.pending[path] = p
}

// Pending returns the number of paths waiting for their window to elapse.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// fire emits the pending event for path once its timer elapses.
func (d *Debouncer) fire(path string, p *pendingEvent) {
	d.mu.Lock()
	current, exists := d.pending[path]
	if !exists || current != p || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	event := Event{Path: path, Kind: p.kind}
	d.mu.Unlock()

	select {
	case d.output <- event:
	case <-d.done:
	}
}

// Close drops all pending events and stops emitting.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
	close(d.done)
}
