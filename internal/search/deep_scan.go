package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

// progressEvery is how many directories the deep scan visits between
// progress messages.
const progressEvery = 100

const scanBufferSize = 128

type messageKind int

const (
	matchMessage messageKind = iota
	progressMessage
	doneMessage
)

type message struct {
	kind    messageKind
	result  Result
	scanned int
}

// deepScan owns one background walker: its cancellation handle, its message
// stream, and a join channel closed when the goroutine exits.
type deepScan struct {
	cancel context.CancelFunc
	msgs   chan message
	done   chan struct{}
}

// startDeepScan spawns the background walker over the entire filesystem
// subtree at rootPath, including regions never loaded into the tree. At most
// one walker runs at a time: Submit cancels and joins any predecessor first.
func (e *Engine) startDeepScan(rootPath, query string, opts Options) {
	ctx, cancel := context.WithCancel(context.Background())
	scan := &deepScan{
		cancel: cancel,
		msgs:   make(chan message, scanBufferSize),
		done:   make(chan struct{}),
	}
	e.scan = scan

	fuzzyMode := e.FuzzyMode
	go func() {
		defer close(scan.done)
		scanned := 0
		walkForMatches(ctx, rootPath, query, opts, fuzzyMode, true, scan.msgs, &scanned)
		send(ctx, scan.msgs, message{kind: doneMessage, scanned: scanned})
	}()
}

// walkForMatches is the recursive deep-scan walker. Cancellation is checked
// before descending into a directory and around each entry, so cancel
// latency is bounded by roughly one entry's worth of I/O.
func walkForMatches(ctx context.Context, path, query string, opts Options, fuzzyMode, isRoot bool, out chan<- message, scanned *int) {
	if ctx.Err() != nil {
		return
	}

	if !opts.FollowSymlinks {
		if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return
		}
	}

	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()

	if !isDir && !opts.ShowFiles {
		return
	}

	name := filepath.Base(path)
	if !isRoot && !opts.ShowHidden && strings.HasPrefix(name, ".") {
		return
	}

	if r, ok := matchScanName(name, query, fuzzyMode, isDir, path); ok {
		send(ctx, out, message{kind: matchMessage, result: r})
	}

	if !isDir {
		return
	}

	*scanned++
	if *scanned%progressEvery == 0 {
		send(ctx, out, message{kind: progressMessage, scanned: *scanned})
	}

	// A directory that cannot be listed is skipped, not fatal.
	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		walkForMatches(ctx, filepath.Join(path, entry.Name()), query, opts, fuzzyMode, false, out, scanned)
	}
}

// matchScanName mirrors Engine.matchName for the worker side, which must not
// touch engine state.
func matchScanName(name, query string, fuzzyMode, isDir bool, path string) (Result, bool) {
	lower := strings.ToLower(name)
	if !fuzzyMode {
		if !strings.Contains(lower, query) {
			return Result{}, false
		}
		return Result{Path: path, IsDir: isDir}, true
	}

	matches := fuzzy.Find(query, []string{lower})
	if len(matches) == 0 {
		return Result{}, false
	}
	m := matches[0]
	return Result{
		Path:         path,
		IsDir:        isDir,
		Fuzzy:        true,
		Score:        m.Score,
		MatchIndexes: append([]int(nil), m.MatchedIndexes...),
	}, true
}

// send delivers a message unless the scan has been cancelled; it never blocks
// past cancellation.
func send(ctx context.Context, out chan<- message, m message) {
	select {
	case out <- m:
	case <-ctx.Done():
	}
}

// CancelScan signals the walker and joins it. After it returns, no message
// from the cancelled scan can ever be observed: the whole stream is dropped
// with the worker.
func (e *Engine) CancelScan() {
	if e.scan == nil {
		return
	}
	e.scan.cancel()
	<-e.scan.done
	e.scan = nil
	e.Searching = false
}
