package search

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kk-code-lab/dtree/internal/tree"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func loadedRoot(t *testing.T, path string, opts tree.Options) *tree.Node {
	t.Helper()
	root := tree.NewRoot(path)
	root.LoadChildren(tree.Options(opts))
	root.Expanded = true
	return root
}

// waitForScan pumps Poll until the deep scan reports done.
func waitForScan(t *testing.T, e *Engine) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for e.Searching {
		e.Poll()
		if time.Now().After(deadline) {
			t.Fatalf("deep scan did not finish")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func resultPaths(results []Result) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return paths
}

func TestTwoPhaseFindsUnloadedMatch(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "z", "aardvark")
	mustMkdir(t, target)

	opts := Options{}
	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("aardvark")
	e.Submit(root, opts)

	// The quick pass only covers the loaded level, where z does not match.
	if len(e.Results) != 0 {
		t.Fatalf("quick pass found %v, want nothing", resultPaths(e.Results))
	}
	if !e.Active || !e.Searching || !e.FocusResults {
		t.Fatalf("submit should activate the search")
	}

	waitForScan(t, e)

	if len(e.Results) != 1 || e.Results[0].Path != target {
		t.Fatalf("results %v, want [%s]", resultPaths(e.Results), target)
	}
	if !e.Results[0].IsDir {
		t.Fatalf("aardvark should be reported as a directory")
	}
}

func TestDeepScanDedupAgainstQuickPass(t *testing.T) {
	base := t.TempDir()
	match := filepath.Join(base, "needle")
	mustMkdir(t, match)

	opts := Options{}
	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("needle")
	e.Submit(root, opts)

	// Quick pass already saw it.
	if len(e.Results) != 1 {
		t.Fatalf("quick pass results %v", resultPaths(e.Results))
	}

	waitForScan(t, e)

	// The deep scan re-finds the same path; it must not duplicate.
	count := 0
	for _, r := range e.Results {
		if r.Path == match {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("needle appears %d times", count)
	}
}

func TestCancelScanDropsPendingMessages(t *testing.T) {
	base := t.TempDir()
	for i := 0; i < 50; i++ {
		mustMkdir(t, filepath.Join(base, "dir", "needle"+string(rune('a'+i%26))+string(rune('a'+i/26))))
	}

	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("needle")
	e.Submit(root, Options{})
	e.CancelScan()

	if e.Searching {
		t.Fatalf("engine still searching after cancel")
	}
	if e.scan != nil {
		t.Fatalf("scan handle should be dropped")
	}
	// No cancelled-scan message can reach the result set.
	if e.Poll() {
		t.Fatalf("poll after cancel returned changes")
	}

	// A fresh search gets its own channel and only its own results.
	e.SetQuery("dir")
	e.Submit(root, Options{})
	waitForScan(t, e)
	for _, p := range resultPaths(e.Results) {
		if filepath.Base(p) != "dir" {
			t.Fatalf("stale result leaked into fresh search: %s", p)
		}
	}
}

func TestFuzzyModeSortsByScoreOnDone(t *testing.T) {
	base := t.TempDir()
	mustMkdir(t, filepath.Join(base, "abc"))
	mustMkdir(t, filepath.Join(base, "axbxc"))
	mustMkdir(t, filepath.Join(base, "zzz"))

	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("/abc")
	if !e.FuzzyMode {
		t.Fatalf("leading slash should enable fuzzy mode")
	}
	e.Submit(root, Options{})
	waitForScan(t, e)

	if len(e.Results) != 2 {
		t.Fatalf("results %v, want abc and axbxc", resultPaths(e.Results))
	}
	if filepath.Base(e.Results[0].Path) != "abc" {
		t.Fatalf("contiguous match should rank first, got %v", resultPaths(e.Results))
	}
	if e.Results[0].Score < e.Results[1].Score {
		t.Fatalf("results not sorted by score: %d < %d", e.Results[0].Score, e.Results[1].Score)
	}
	if len(e.Results[0].MatchIndexes) == 0 {
		t.Fatalf("fuzzy results should carry match positions")
	}
}

func TestEmptyQueryResetsToIdle(t *testing.T) {
	base := t.TempDir()
	mustMkdir(t, filepath.Join(base, "a"))
	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("a")
	e.Submit(root, Options{})
	waitForScan(t, e)

	e.SetQuery("")
	e.Submit(root, Options{})
	if e.Active || e.Searching || len(e.Results) != 0 {
		t.Fatalf("empty query should reset the engine")
	}

	// The bare fuzzy marker is also an empty query.
	e.SetQuery("/")
	e.Submit(root, Options{})
	if e.Active {
		t.Fatalf("lone slash should stay idle")
	}
}

func TestHiddenAndFileFilters(t *testing.T) {
	base := t.TempDir()
	mustMkdir(t, filepath.Join(base, ".hidden", "match_in_hidden"))
	mustMkdir(t, filepath.Join(base, "open", "match_in_open"))
	mustWrite(t, filepath.Join(base, "open", "match_file.txt"))

	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("match")
	e.Submit(root, Options{})
	waitForScan(t, e)

	got := resultPaths(e.Results)
	if len(got) != 1 || filepath.Base(got[0]) != "match_in_open" {
		t.Fatalf("dirs-only search got %v", got)
	}

	e.SetQuery("match")
	e.Submit(root, Options{ShowFiles: true, ShowHidden: true})
	waitForScan(t, e)
	if len(e.Results) != 3 {
		t.Fatalf("unfiltered search got %v", resultPaths(e.Results))
	}
}

func TestDeepScanCountsDirectories(t *testing.T) {
	base := t.TempDir()
	for i := 0; i < 10; i++ {
		mustMkdir(t, filepath.Join(base, "d"+string(rune('0'+i))))
	}

	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("nomatch")
	e.Submit(root, Options{})
	waitForScan(t, e)

	// Root plus ten subdirectories.
	if e.Scanned != 11 {
		t.Fatalf("scanned %d directories, want 11", e.Scanned)
	}
}

func TestSelectionNavigation(t *testing.T) {
	e := NewEngine()
	e.Results = []Result{{Path: "/a"}, {Path: "/b"}, {Path: "/c"}}

	e.MoveUp()
	if e.Selected != 0 {
		t.Fatalf("MoveUp at top moved to %d", e.Selected)
	}
	e.MoveDown()
	e.MoveDown()
	e.MoveDown()
	if e.Selected != 2 {
		t.Fatalf("MoveDown should clamp at the end, got %d", e.Selected)
	}
	if r, ok := e.SelectedResult(); !ok || r.Path != "/c" {
		t.Fatalf("selected result %+v", r)
	}
	e.SetSelected(5)
	if e.Selected != 2 {
		t.Fatalf("out of range SetSelected mutated selection")
	}
}

func TestCloseResetsEverything(t *testing.T) {
	base := t.TempDir()
	mustMkdir(t, filepath.Join(base, "abc"))
	root := loadedRoot(t, base, tree.Options{})

	e := NewEngine()
	e.SetQuery("abc")
	e.Submit(root, Options{})
	e.Close()

	if e.Active || e.Searching || e.Query != "" || len(e.Results) != 0 || e.scan != nil {
		t.Fatalf("close left state behind: %+v", e)
	}
}
