package nav

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kk-code-lab/dtree/internal/tree"
)

// Row is a snapshot of one visible node. Rows carry no node handle: any
// mutation resolves the node by Path through the owning tree, so a stale row
// can never dangle after the tree is rebuilt.
type Row struct {
	Path     string
	Name     string
	IsDir    bool
	Depth    int
	Expanded bool
	HasError bool
}

// Navigation owns the tree root and maintains the flat projection: the
// depth-first visible ordering of nodes plus a path-to-position index.
type Navigation struct {
	Root     *tree.Node
	Rows     []Row
	Selected int

	index map[string]int
}

// New builds a navigation rooted at startPath with the root expanded one
// level. The root must be a listable directory; otherwise the error is
// returned and no state is constructed. startPath is made absolute first:
// every path in the tree derives from the root, and relative paths would
// break parent navigation and the exit-directory handoff.
func New(startPath string, opts tree.Options) (*Navigation, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, err
	}
	root, err := newLoadedRoot(abs, opts)
	if err != nil {
		return nil, err
	}

	n := &Navigation{Root: root}
	n.Rebuild()
	return n, nil
}

func newLoadedRoot(path string, opts tree.Options) (*tree.Node, error) {
	root := tree.NewRoot(path)
	if !root.IsDir {
		return nil, fmt.Errorf("not a directory: %s", path)
	}
	root.LoadChildren(opts)
	if root.HasError {
		return nil, fmt.Errorf("cannot open %s: %s", path, root.ErrMsg)
	}
	root.Expanded = true
	return root, nil
}

// Rebuild recomputes the full row sequence and path index from the tree.
func (n *Navigation) Rebuild() {
	n.Rows = n.Rows[:0]
	n.collectVisible(n.Root)
	n.rebuildIndex()
	n.clampSelection()
}

func (n *Navigation) collectVisible(node *tree.Node) {
	n.Rows = append(n.Rows, snapshotRow(node))
	if node.Expanded {
		for _, child := range node.Children {
			n.collectVisible(child)
		}
	}
}

func snapshotRow(node *tree.Node) Row {
	return Row{
		Path:     node.Path,
		Name:     node.Name,
		IsDir:    node.IsDir,
		Depth:    node.Depth,
		Expanded: node.Expanded,
		HasError: node.HasError,
	}
}

// rebuildIndex refreshes the path-to-position map. Cheap relative to the
// tree I/O that precedes every mutation.
func (n *Navigation) rebuildIndex() {
	if n.index == nil {
		n.index = make(map[string]int, len(n.Rows))
	} else {
		clear(n.index)
	}
	for i, row := range n.Rows {
		n.index[row.Path] = i
	}
}

// IndexOf returns the projection position of path.
func (n *Navigation) IndexOf(path string) (int, bool) {
	i, ok := n.index[path]
	return i, ok
}

// SelectedRow returns the snapshot under the cursor.
func (n *Navigation) SelectedRow() (Row, bool) {
	if n.Selected < 0 || n.Selected >= len(n.Rows) {
		return Row{}, false
	}
	return n.Rows[n.Selected], true
}

// MoveDown advances the selection. Reports whether it moved.
func (n *Navigation) MoveDown() bool {
	if n.Selected >= len(n.Rows)-1 {
		return false
	}
	n.Selected++
	return true
}

// MoveUp retreats the selection. Reports whether it moved.
func (n *Navigation) MoveUp() bool {
	if n.Selected <= 0 {
		return false
	}
	n.Selected--
	return true
}

func (n *Navigation) clampSelection() {
	if len(n.Rows) == 0 {
		n.Selected = 0
		return
	}
	if n.Selected < 0 {
		n.Selected = 0
	} else if n.Selected >= len(n.Rows) {
		n.Selected = len(n.Rows) - 1
	}
}

// Toggle expands or collapses the directory at path, splicing the projection
// incrementally. If path is missing from the index (stale projection) it
// falls back to a recursive search plus full rebuild. The returned message is
// non-empty when the toggle surfaced a fresh listing error on the node; the
// toggle itself still succeeds.
func (n *Navigation) Toggle(path string, opts tree.Options) string {
	node := n.Root.FindByPath(path)
	if node == nil || !node.IsDir {
		return ""
	}
	hadError := node.HasError

	i, ok := n.index[path]
	if !ok || i >= len(n.Rows) || n.Rows[i].Path != path {
		node.ToggleExpand(opts)
		n.Rebuild()
		return freshErrorMessage(node, hadError)
	}

	wasExpanded := node.Expanded
	node.ToggleExpand(opts)
	n.Rows[i] = snapshotRow(node)

	if wasExpanded {
		n.spliceOut(i)
	} else {
		n.spliceIn(i, node)
	}
	n.rebuildIndex()
	n.clampSelection()
	return freshErrorMessage(node, hadError)
}

func freshErrorMessage(node *tree.Node, hadError bool) string {
	if node.HasError && !hadError {
		return node.ErrMsg
	}
	return ""
}

// spliceOut removes the contiguous descendant range of the row at position i:
// every following row with a strictly greater depth.
func (n *Navigation) spliceOut(i int) {
	depth := n.Rows[i].Depth
	j := i + 1
	for j < len(n.Rows) && n.Rows[j].Depth > depth {
		j++
	}
	n.Rows = append(n.Rows[:i+1], n.Rows[j:]...)
	if n.Selected > i && n.Selected < j {
		n.Selected = i
	} else if n.Selected >= j {
		n.Selected -= j - i - 1
	}
}

// spliceIn inserts the newly visible descendants of node directly after
// position i.
func (n *Navigation) spliceIn(i int, node *tree.Node) {
	var entering []Row
	for _, child := range node.Children {
		entering = appendVisible(entering, child)
	}
	if len(entering) == 0 {
		return
	}

	rows := make([]Row, 0, len(n.Rows)+len(entering))
	rows = append(rows, n.Rows[:i+1]...)
	rows = append(rows, entering...)
	rows = append(rows, n.Rows[i+1:]...)
	n.Rows = rows

	if n.Selected > i {
		n.Selected += len(entering)
	}
}

func appendVisible(rows []Row, node *tree.Node) []Row {
	rows = append(rows, snapshotRow(node))
	if node.Expanded {
		for _, child := range node.Children {
			rows = appendVisible(rows, child)
		}
	}
	return rows
}

// GoToParent replaces the root with its parent directory and restores the
// selection onto the directory we came from. Fails without mutating state if
// the parent cannot be listed.
func (n *Navigation) GoToParent(opts tree.Options) error {
	parent := filepath.Dir(n.Root.Path)
	if parent == n.Root.Path {
		return nil
	}

	prior := n.Root.Path
	root, err := newLoadedRoot(parent, opts)
	if err != nil {
		return err
	}

	n.Root = root
	n.Selected = 0
	n.Rebuild()
	if i, ok := n.index[prior]; ok {
		n.Selected = i
	}
	return nil
}

// GoToDirectory replaces the root with an arbitrary directory (bookmarks,
// breadcrumbs). Prior state is untouched when the target is not a listable
// directory.
func (n *Navigation) GoToDirectory(path string, opts tree.Options) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}

	root, err := newLoadedRoot(path, opts)
	if err != nil {
		return err
	}

	n.Root = root
	n.Selected = 0
	n.Rebuild()
	return nil
}

// ExpandPathTo loads and expands every ancestor directory between the root
// and path, then rebuilds the projection and moves the selection onto path.
// This is how a search result becomes selectable in the tree view.
func (n *Navigation) ExpandPathTo(path string, opts tree.Options) bool {
	expandAncestors(n.Root, path, opts)
	n.Rebuild()
	if i, ok := n.index[path]; ok {
		n.Selected = i
		return true
	}
	return false
}

func expandAncestors(node *tree.Node, target string, opts tree.Options) bool {
	if node.Path == target {
		return true
	}
	if !tree.IsAncestorPath(node.Path, target) {
		return false
	}
	if node.IsDir {
		node.LoadChildren(opts)
		node.Expanded = true
	}
	for _, child := range node.Children {
		if expandAncestors(child, target, opts) {
			return true
		}
	}
	return false
}

// Reload re-lists every expanded directory with the new options and rebuilds
// the projection, keeping the selection on the same path when it survives
// the reload.
func (n *Navigation) Reload(opts tree.Options) {
	var selectedPath string
	if row, ok := n.SelectedRow(); ok {
		selectedPath = row.Path
	}

	n.Root.ReloadExpanded(opts)
	n.Rebuild()

	if selectedPath != "" {
		if i, ok := n.index[selectedPath]; ok {
			n.Selected = i
		}
	}
}
