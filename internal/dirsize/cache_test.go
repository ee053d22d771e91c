package dirsize

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWriteN(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// waitResolved pumps Poll until path leaves the in-flight set.
func waitResolved(t *testing.T, c *Cache, path string) Entry {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		c.Poll()
		if !c.InFlight(path) {
			if e, ok := c.Get(path); ok {
				return e
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("size for %s never resolved", path)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestRequestResolvesRecursiveSize(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "sub"))
	mustWriteN(t, filepath.Join(root, "top.bin"), 100)
	mustWriteN(t, filepath.Join(root, "sub", "inner.bin"), 250)

	c := New()
	defer c.Close()

	c.Request(root)
	if !c.InFlight(root) {
		t.Fatalf("request should mark path in-flight")
	}
	if _, ok := c.Get(root); ok {
		t.Fatalf("in-flight path must not be resolved yet")
	}

	e := waitResolved(t, c, root)
	if e.Size != 350 {
		t.Fatalf("size %d, want 350", e.Size)
	}
	if e.Partial {
		t.Fatalf("fully readable tree reported partial")
	}
	if c.Busy() {
		t.Fatalf("cache still busy after resolution")
	}
}

func TestRequestDedupAndNoRecompute(t *testing.T) {
	root := t.TempDir()
	mustWriteN(t, filepath.Join(root, "f.bin"), 10)

	c := New()
	defer c.Close()

	c.Request(root)
	c.Request(root) // in-flight, must not requeue
	waitResolved(t, c, root)

	mustWriteN(t, filepath.Join(root, "g.bin"), 10000)
	c.Request(root) // resolved, must not recompute

	time.Sleep(20 * time.Millisecond)
	c.Poll()
	e, _ := c.Get(root)
	if e.Size != 10 {
		t.Fatalf("resolved entry recomputed: %d", e.Size)
	}
}

// TestRequestSchedulesEachPathOnce inspects the task queue directly: a
// duplicate request cannot be detected through the resolved size, since
// both computations would agree. The worker is kept off so the queue
// stays observable.
func TestRequestSchedulesEachPathOnce(t *testing.T) {
	root := t.TempDir()

	c := New()
	c.started = true // no worker goroutine; Close must not be called

	c.Request(root)
	c.Request(root)

	c.mu.Lock()
	queued := len(c.queue)
	_, inflight := c.inflight[root]
	c.mu.Unlock()
	if queued != 1 {
		t.Fatalf("in-flight path queued %d times, want 1", queued)
	}
	if !inflight {
		t.Fatalf("requested path not marked in-flight")
	}

	// Resolve the path by hand; a further request must not schedule again.
	c.entries[root] = Entry{Size: 10}
	c.mu.Lock()
	delete(c.inflight, root)
	c.queue = nil
	c.mu.Unlock()

	c.Request(root)
	c.mu.Lock()
	queued = len(c.queue)
	c.mu.Unlock()
	if queued != 0 {
		t.Fatalf("resolved path was scheduled again")
	}
}

func TestUnreadableSubtreeYieldsPartialLowerBound(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod-based permission test")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits ignored")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	mustMkdir(t, locked)
	mustWriteN(t, filepath.Join(root, "counted.bin"), 500)
	mustWriteN(t, filepath.Join(locked, "invisible.bin"), 9000)
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	c := New()
	defer c.Close()

	c.Request(root)
	e := waitResolved(t, c, root)
	if !e.Partial {
		t.Fatalf("unreadable subtree should mark the total partial")
	}
	if e.Size != 500 {
		t.Fatalf("siblings of the unreadable dir should still count: %d", e.Size)
	}
}

func TestCloseJoinsWorkerAndDropsPending(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		dir := filepath.Join(root, "d", string(rune('a'+i)))
		mustMkdir(t, dir)
		mustWriteN(t, filepath.Join(dir, "f.bin"), 1)
	}

	c := New()
	for i := 0; i < 20; i++ {
		c.Request(filepath.Join(root, "d", string(rune('a'+i))))
	}
	c.Close()

	if c.Busy() {
		t.Fatalf("in-flight set should be cleared on close")
	}
	// Close twice is fine.
	c.Close()

	// The cache is restartable after close.
	c.Request(root)
	e := waitResolved(t, c, root)
	if e.Size != 20 {
		t.Fatalf("restarted worker computed %d, want 20", e.Size)
	}
	c.Close()
}

func TestPollBeforeStartIsNoop(t *testing.T) {
	c := New()
	if c.Poll() {
		t.Fatalf("poll on idle cache reported changes")
	}
	if c.Busy() {
		t.Fatalf("new cache is busy")
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size    int64
		partial bool
		want    string
	}{
		{0, false, "0B"},
		{512, false, "512B"},
		{1024, false, "1.0K"},
		{1536, false, "1.5K"},
		{1 << 20, false, "1.0M"},
		{5<<30 + 1<<29, false, "5.5G"},
		{1 << 40, false, "1.0T"},
		{2048, true, ">2.0K"},
		{0, true, ">0B"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.size, tc.partial); got != tc.want {
			t.Errorf("FormatSize(%d, %v) = %q, want %q", tc.size, tc.partial, got, tc.want)
		}
	}
}
