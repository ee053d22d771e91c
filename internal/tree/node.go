package tree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fsutil "github.com/kk-code-lab/dtree/internal/fs"
	"golang.org/x/text/unicode/norm"
)

// Node is a single filesystem entry in the lazily materialized tree. A node
// owns its children; everything else refers to nodes by path only.
type Node struct {
	Path     string
	Name     string
	IsDir    bool
	Expanded bool
	Depth    int
	Children []*Node
	HasError bool
	ErrMsg   string
}

// Options control which directory entries become children during a load.
type Options struct {
	ShowFiles      bool
	ShowHidden     bool
	FollowSymlinks bool
}

// NewRoot creates a depth-0 node for a new tree root. The path is resolved
// with Stat so that a symlinked start directory still browses as a directory.
func NewRoot(path string) *Node {
	info, err := os.Stat(path)
	return &Node{
		Path:  path,
		Name:  displayName(path),
		IsDir: err == nil && info.IsDir(),
	}
}

func displayName(path string) string {
	name := filepath.Base(path)
	return norm.NFC.String(name)
}

// LoadChildren populates Children for a directory node. Idempotent: a node
// with children already loaded is left untouched (clear first to force a
// reload). A listing failure is recorded on the node and is not an error for
// the caller.
func (n *Node) LoadChildren(opts Options) {
	if !n.IsDir || len(n.Children) > 0 {
		return
	}

	entries, err := os.ReadDir(n.Path)
	if err != nil {
		n.HasError = true
		n.ErrMsg = listErrorMessage(err)
		return
	}
	n.HasError = false
	n.ErrMsg = ""

	children := make([]*Node, 0, len(entries))
	for _, e := range entries {
		rawName := e.Name()
		fullPath := filepath.Join(n.Path, rawName)

		if fsutil.ShouldHideFromListing(fullPath, rawName) {
			continue
		}
		if !opts.ShowHidden && fsutil.IsHidden(fullPath, rawName) {
			continue
		}

		isDir := e.IsDir()
		if !isDir && opts.FollowSymlinks && e.Type()&os.ModeSymlink != 0 {
			if info, statErr := os.Stat(fullPath); statErr == nil {
				isDir = info.IsDir()
			}
		}
		if !isDir && !opts.ShowFiles {
			continue
		}

		children = append(children, &Node{
			Path:  fullPath,
			Name:  norm.NFC.String(rawName),
			IsDir: isDir,
			Depth: n.Depth + 1,
		})
	}

	sortChildren(children)
	n.Children = children
}

// sortChildren orders directories before files, then byte-wise by name
// within each group.
func sortChildren(children []*Node) {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
}

// ToggleExpand flips the expansion state of a directory node, loading its
// children on the collapsed-to-expanded transition. No-op for files.
func (n *Node) ToggleExpand(opts Options) {
	if !n.IsDir {
		return
	}
	if n.Expanded {
		n.Expanded = false
		return
	}
	n.LoadChildren(opts)
	n.Expanded = true
}

// ClearChildren drops loaded children so the next load re-lists the
// directory.
func (n *Node) ClearChildren() {
	n.Children = nil
}

// ReloadExpanded re-lists this node and every expanded descendant with the
// given options, preserving which directories were expanded. Used when a
// visibility filter changes so already expanded directories pick up the new
// mode.
func (n *Node) ReloadExpanded(opts Options) {
	if !n.IsDir || !n.Expanded {
		return
	}

	wasExpanded := make(map[string]*Node)
	for _, c := range n.Children {
		if c.Expanded {
			wasExpanded[c.Path] = c
		}
	}

	n.ClearChildren()
	n.LoadChildren(opts)

	for _, child := range n.Children {
		if old, ok := wasExpanded[child.Path]; ok && child.IsDir {
			child.Expanded = true
			// The old subtree carries the deeper expansion flags.
			child.Children = old.Children
			child.ReloadExpanded(opts)
		}
	}
}

// FindByPath resolves a node by path through the ownership tree. Returns nil
// if the path is not materialized under this node.
func (n *Node) FindByPath(path string) *Node {
	if n.Path == path {
		return n
	}
	if !IsAncestorPath(n.Path, path) {
		return nil
	}
	for _, child := range n.Children {
		if found := child.FindByPath(path); found != nil {
			return found
		}
	}
	return nil
}

// IsAncestorPath reports whether path lies strictly under ancestor.
func IsAncestorPath(ancestor, path string) bool {
	if ancestor == path {
		return false
	}
	prefix := ancestor
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

func listErrorMessage(err error) string {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, fs.ErrNotExist):
		return "no such directory"
	default:
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return pathErr.Err.Error()
		}
		return err.Error()
	}
}
