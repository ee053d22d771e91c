package nav

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

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

// buildFixture creates root/{a/{a1,a2.txt}, b/{c.txt}} and returns the root.
func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "a", "a1"))
	mustWrite(t, filepath.Join(root, "a", "a2.txt"))
	mustMkdir(t, filepath.Join(root, "b"))
	mustWrite(t, filepath.Join(root, "b", "c.txt"))
	return root
}

func rowPaths(rows []Row) []string {
	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}
	return paths
}

func TestNewRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	mustWrite(t, file)

	if _, err := New(file, tree.Options{}); err == nil {
		t.Fatalf("expected error for file root")
	}
	if _, err := New(filepath.Join(root, "missing"), tree.Options{}); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestNewResolvesRelativeRoot(t *testing.T) {
	root := buildFixture(t)
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})

	n, err := New(".", tree.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !filepath.IsAbs(n.Root.Path) {
		t.Fatalf("root path not absolute: %s", n.Root.Path)
	}

	// A "." root would make filepath.Dir a fixed point and trap the view.
	prior := n.Root.Path
	if err := n.GoToParent(tree.Options{}); err != nil {
		t.Fatalf("GoToParent: %v", err)
	}
	if n.Root.Path == prior || !filepath.IsAbs(n.Root.Path) {
		t.Fatalf("parent navigation stuck at %s", n.Root.Path)
	}
}

func TestNewProjectsRootExpanded(t *testing.T) {
	root := buildFixture(t)
	n, err := New(root, tree.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []string{root, filepath.Join(root, "a"), filepath.Join(root, "b")}
	got := rowPaths(n.Rows)
	if len(got) != len(want) {
		t.Fatalf("rows %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows %v, want %v", got, want)
		}
	}
	if n.Selected != 0 {
		t.Fatalf("selection should start at the root row")
	}
}

func TestToggleSplicesDescendants(t *testing.T) {
	root := buildFixture(t)
	opts := tree.Options{ShowFiles: true}
	n, err := New(root, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := filepath.Join(root, "b")
	if msg := n.Toggle(b, opts); msg != "" {
		t.Fatalf("toggle error: %s", msg)
	}

	cTxt := filepath.Join(b, "c.txt")
	i, ok := n.IndexOf(cTxt)
	if !ok {
		t.Fatalf("c.txt missing from projection: %v", rowPaths(n.Rows))
	}

	// Select the entering child, collapse its parent: the selection must
	// land on the parent row.
	n.Selected = i
	if msg := n.Toggle(b, opts); msg != "" {
		t.Fatalf("collapse error: %s", msg)
	}

	bIdx, ok := n.IndexOf(b)
	if !ok {
		t.Fatalf("b missing after collapse")
	}
	if n.Selected != bIdx {
		t.Fatalf("selection %d, want parent row %d", n.Selected, bIdx)
	}
	if _, ok := n.IndexOf(cTxt); ok {
		t.Fatalf("collapsed child still indexed")
	}
}

func TestToggleSelectionBelowCollapsedRange(t *testing.T) {
	root := buildFixture(t)
	opts := tree.Options{ShowFiles: true}
	n, err := New(root, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	n.Toggle(a, opts)

	// Put the selection on b, which sits below a's expanded range.
	bIdx, _ := n.IndexOf(b)
	n.Selected = bIdx

	n.Toggle(a, opts)
	newBIdx, _ := n.IndexOf(b)
	if n.Selected != newBIdx {
		t.Fatalf("selection should track b across the splice: %d != %d", n.Selected, newBIdx)
	}
	if row, _ := n.SelectedRow(); row.Path != b {
		t.Fatalf("selected row is %s, want %s", row.Path, b)
	}
}

func TestToggleStaleIndexFallsBackToRebuild(t *testing.T) {
	root := buildFixture(t)
	opts := tree.Options{}
	n, err := New(root, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Sabotage the index to simulate a stale projection.
	a := filepath.Join(root, "a")
	delete(n.index, a)

	n.Toggle(a, opts)
	i, ok := n.IndexOf(a)
	if !ok {
		t.Fatalf("a missing after fallback rebuild")
	}
	if !n.Rows[i].Expanded {
		t.Fatalf("a should be expanded")
	}
	if _, ok := n.IndexOf(filepath.Join(a, "a1")); !ok {
		t.Fatalf("a1 should be visible after fallback rebuild")
	}
}

func TestToggleMissingPathIsNoop(t *testing.T) {
	root := buildFixture(t)
	opts := tree.Options{}
	n, err := New(root, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := len(n.Rows)
	if msg := n.Toggle(filepath.Join(root, "nope"), opts); msg != "" {
		t.Fatalf("unexpected message: %s", msg)
	}
	if len(n.Rows) != before {
		t.Fatalf("projection changed for missing path")
	}
}

func TestGoToParentRestoresSelection(t *testing.T) {
	base := t.TempDir()
	start := filepath.Join(base, "projects", "deep")
	mustMkdir(t, start)
	mustMkdir(t, filepath.Join(base, "projects", "other"))

	n, err := New(start, tree.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := n.GoToParent(tree.Options{}); err != nil {
		t.Fatalf("GoToParent: %v", err)
	}
	if n.Root.Path != filepath.Join(base, "projects") {
		t.Fatalf("root is %s", n.Root.Path)
	}
	row, ok := n.SelectedRow()
	if !ok || row.Path != start {
		t.Fatalf("selection should land on the prior root, got %+v", row)
	}
}

func TestGoToDirectoryRejectsFiles(t *testing.T) {
	root := buildFixture(t)
	n, err := New(root, tree.Options{ShowFiles: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	priorRoot := n.Root.Path
	priorRows := len(n.Rows)
	if err := n.GoToDirectory(filepath.Join(root, "b", "c.txt"), tree.Options{}); err == nil {
		t.Fatalf("expected error for file target")
	}
	if n.Root.Path != priorRoot || len(n.Rows) != priorRows {
		t.Fatalf("failed jump mutated state")
	}
}

func TestExpandPathTo(t *testing.T) {
	base := t.TempDir()
	deep := filepath.Join(base, "x", "y", "z")
	mustMkdir(t, deep)

	n, err := New(base, tree.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !n.ExpandPathTo(deep, tree.Options{}) {
		t.Fatalf("ExpandPathTo failed for %s", deep)
	}
	row, ok := n.SelectedRow()
	if !ok || row.Path != deep {
		t.Fatalf("selection %+v, want %s", row, deep)
	}

	if n.ExpandPathTo(filepath.Join(base, "x", "missing"), tree.Options{}) {
		t.Fatalf("ExpandPathTo should fail for a missing path")
	}
}

func TestReloadKeepsSelectionByPath(t *testing.T) {
	root := buildFixture(t)
	opts := tree.Options{}
	n, err := New(root, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b := filepath.Join(root, "b")
	bIdx, _ := n.IndexOf(b)
	n.Selected = bIdx

	withFiles := tree.Options{ShowFiles: true}
	n.Reload(withFiles)

	row, ok := n.SelectedRow()
	if !ok || row.Path != b {
		t.Fatalf("selection lost across reload: %+v", row)
	}
}

// TestToggleMatchesRebuild drives random expand/collapse sequences and checks
// that the incremental splice always produces the same projection and index a
// full rebuild would.
func TestToggleMatchesRebuild(t *testing.T) {
	base := t.TempDir()
	// A small tree with some depth and sibling fanout.
	for _, dir := range []string{
		"a/a1/a11", "a/a2", "b/b1", "b/b2/b21", "c",
	} {
		mustMkdir(t, filepath.Join(base, filepath.FromSlash(dir)))
	}
	mustWrite(t, filepath.Join(base, "a", "f1.txt"))
	mustWrite(t, filepath.Join(base, "b", "b2", "f2.txt"))

	opts := tree.Options{ShowFiles: true}

	rapid.Check(t, func(rt *rapid.T) {
		n, err := New(base, opts)
		if err != nil {
			rt.Fatalf("New: %v", err)
		}

		steps := rapid.IntRange(1, 12).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			var dirPaths []string
			for _, row := range n.Rows {
				if row.IsDir {
					dirPaths = append(dirPaths, row.Path)
				}
			}
			target := rapid.SampledFrom(dirPaths).Draw(rt, "target")
			n.Selected = rapid.IntRange(0, len(n.Rows)-1).Draw(rt, "selected")

			n.Toggle(target, opts)

			expected := &Navigation{Root: n.Root}
			expected.Rebuild()
			if len(expected.Rows) != len(n.Rows) {
				rt.Fatalf("row count diverged: %d != %d", len(n.Rows), len(expected.Rows))
			}
			for i := range expected.Rows {
				if expected.Rows[i] != n.Rows[i] {
					rt.Fatalf("row %d diverged: %+v != %+v", i, n.Rows[i], expected.Rows[i])
				}
			}
			for i, row := range n.Rows {
				if got, ok := n.IndexOf(row.Path); !ok || got != i {
					rt.Fatalf("index wrong for %s: got %d/%v, want %d", row.Path, got, ok, i)
				}
			}
			if n.Selected < 0 || n.Selected >= len(n.Rows) {
				rt.Fatalf("selection out of range: %d of %d", n.Selected, len(n.Rows))
			}
		}
	})
}
