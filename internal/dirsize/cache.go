package dirsize

import (
	"fmt"
	"sync"
	"time"
)

const (
	// calcTimeout bounds the wall-clock time spent on one directory.
	calcTimeout = 5 * time.Second
	// maxFilesPerTask bounds how many files one calculation may touch.
	maxFilesPerTask = 10000
	// checkEvery is the file cadence for timeout/shutdown checks.
	checkEvery = 100

	resultBufferSize = 64
)

// Entry is a resolved recursive size. Partial marks the size as a lower
// bound: at least one subdirectory was unreadable or a calculation limit was
// hit.
type Entry struct {
	Size    int64
	Partial bool
}

type sizeMessage struct {
	path    string
	size    int64
	partial bool
	done    bool
}

// Cache computes recursive directory sizes on a single lazily started
// background worker. A path is always in exactly one of three states: absent,
// in-flight, or resolved; resolved entries are never recomputed.
//
// The entries map is touched only by the owning (controller) goroutine; the
// worker communicates exclusively through the result channel. Only the
// in-flight set and task queue are shared, guarded by mu and never held
// across I/O.
type Cache struct {
	entries map[string]Entry

	mu       sync.Mutex
	inflight map[string]struct{}
	queue    []string

	msgs    chan sizeMessage
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	started bool
}

// New creates an empty cache. The worker starts on the first Request.
func New() *Cache {
	return &Cache{
		entries:  make(map[string]Entry),
		inflight: make(map[string]struct{}),
	}
}

// Get returns the resolved entry for path. Absent and in-flight paths report
// not found.
func (c *Cache) Get(path string) (Entry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// InFlight reports whether a calculation for path has been scheduled but not
// yet resolved.
func (c *Cache) InFlight(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[path]
	return ok
}

// Busy reports whether any calculation is still in flight.
func (c *Cache) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight) > 0
}

// Request schedules a size calculation for path. No-op when the path is
// already resolved or in-flight. Starting the worker is idempotent.
func (c *Cache) Request(path string) {
	if _, ok := c.entries[path]; ok {
		return
	}

	c.mu.Lock()
	if _, ok := c.inflight[path]; ok {
		c.mu.Unlock()
		return
	}
	c.ensureWorkerLocked()
	c.inflight[path] = struct{}{}
	c.queue = append(c.queue, path)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Cache) ensureWorkerLocked() {
	if c.started {
		return
	}
	c.msgs = make(chan sizeMessage, resultBufferSize)
	c.wake = make(chan struct{}, 1)
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	c.started = true
	go c.workerLoop(c.msgs, c.wake, c.quit, c.done)
}

// Poll drains pending worker messages: resolved entries go into the cache
// map, "done" markers clear the in-flight set. Returns whether a size was
// resolved, as a repaint hint.
func (c *Cache) Poll() bool {
	if !c.started {
		return false
	}

	updated := false
	for {
		select {
		case m := <-c.msgs:
			if m.done {
				c.mu.Lock()
				delete(c.inflight, m.path)
				c.mu.Unlock()
			} else {
				c.entries[m.path] = Entry{Size: m.size, Partial: m.partial}
				updated = true
			}
		default:
			return updated
		}
	}
}

// Close signals shutdown, joins the worker, and clears all in-flight state.
// Pending calculations are dropped, not flushed. Safe to call more than once;
// resolved entries survive.
func (c *Cache) Close() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	quit, done := c.quit, c.done
	c.mu.Unlock()

	close(quit)
	<-done

	c.mu.Lock()
	clear(c.inflight)
	c.queue = nil
	c.mu.Unlock()
}

// FormatSize renders a byte count in compact 1024-based units. Partial sizes
// carry a ">" prefix marking them as lower bounds.
func FormatSize(size int64, partial bool) string {
	const (
		kb = int64(1) << 10
		mb = kb << 10
		gb = mb << 10
		tb = gb << 10
	)

	prefix := ""
	if partial {
		prefix = ">"
	}

	switch {
	case size >= tb:
		return fmt.Sprintf("%s%.1fT", prefix, float64(size)/float64(tb))
	case size >= gb:
		return fmt.Sprintf("%s%.1fG", prefix, float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%s%.1fM", prefix, float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%s%.1fK", prefix, float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%s%dB", prefix, size)
	}
}
