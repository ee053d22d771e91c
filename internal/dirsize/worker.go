package dirsize

import (
	"os"
	"path/filepath"
	"time"
)

// workerLoop pulls queued paths and computes their recursive sizes, emitting
// a result message followed by a done marker per path. On shutdown it clears
// the in-flight set and exits without flushing pending work.
func (c *Cache) workerLoop(msgs chan<- sizeMessage, wake <-chan struct{}, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	cancelled := func() bool {
		select {
		case <-quit:
			return true
		default:
			return false
		}
	}

	for {
		select {
		case <-quit:
			c.clearInFlight()
			return
		case <-wake:
		}

		for {
			path, ok := c.popTask()
			if !ok {
				break
			}

			fileCount := 0
			size, partial := computeSize(path, time.Now(), &fileCount, cancelled)
			if cancelled() {
				c.clearInFlight()
				return
			}

			if !deliver(msgs, quit, sizeMessage{path: path, size: size, partial: partial}) {
				c.clearInFlight()
				return
			}
			if !deliver(msgs, quit, sizeMessage{path: path, done: true}) {
				c.clearInFlight()
				return
			}
		}
	}
}

func deliver(msgs chan<- sizeMessage, quit <-chan struct{}, m sizeMessage) bool {
	select {
	case msgs <- m:
		return true
	case <-quit:
		return false
	}
}

func (c *Cache) popTask() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return "", false
	}
	path := c.queue[0]
	c.queue = c.queue[1:]
	return path, true
}

func (c *Cache) clearInFlight() {
	c.mu.Lock()
	clear(c.inflight)
	c.queue = nil
	c.mu.Unlock()
}

// computeSize sums file sizes under path recursively. An unreadable
// subdirectory is skipped and its siblings keep accumulating; the result is
// then a partial lower bound. Timeout, file-count limit, and shutdown also
// cut the walk short as partial.
func computeSize(path string, start time.Time, fileCount *int, cancelled func() bool) (int64, bool) {
	var total int64
	partial := false

	if time.Since(start) > calcTimeout || *fileCount >= maxFilesPerTask {
		return total, true
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, true
	}

	for _, entry := range entries {
		if *fileCount%checkEvery == 0 {
			if cancelled() || time.Since(start) > calcTimeout {
				return total, true
			}
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			partial = true
			continue
		}

		if info.IsDir() {
			subSize, subPartial := computeSize(filepath.Join(path, entry.Name()), start, fileCount, cancelled)
			total += subSize
			if subPartial {
				partial = true
			}
			continue
		}

		// Symlinks contribute their own (lstat) size; targets are never
		// followed, so cycles cannot occur.
		total += info.Size()
		*fileCount++
		if *fileCount >= maxFilesPerTask {
			return total, true
		}
	}

	return total, partial
}
