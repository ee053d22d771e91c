package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kk-code-lab/dtree/internal/tree"
)

// Result is a single search hit. Score and MatchIndexes are populated only in
// fuzzy mode; MatchIndexes holds the matched character positions for
// highlighting and is opaque to the engine itself.
type Result struct {
	Path         string
	IsDir        bool
	Fuzzy        bool
	Score        int
	MatchIndexes []int
}

// Options mirror the tree visibility filters for both search phases.
type Options struct {
	ShowFiles      bool
	ShowHidden     bool
	FollowSymlinks bool
}

// Engine runs the two-phase search: a synchronous quick pass over the
// already-loaded tree followed by a cancellable deep scan of the whole
// subtree on a background goroutine. Results are deduplicated by path.
type Engine struct {
	Active       bool
	Query        string
	FuzzyMode    bool
	Results      []Result
	Selected     int
	FocusResults bool
	Searching    bool
	Scanned      int

	seen map[string]struct{}
	scan *deepScan
}

// NewEngine creates an idle search engine.
func NewEngine() *Engine {
	return &Engine{seen: make(map[string]struct{})}
}

// SetQuery stores the raw query and derives fuzzy mode from the leading '/'.
func (e *Engine) SetQuery(raw string) {
	e.Query = raw
	e.FuzzyMode = strings.HasPrefix(raw, "/")
}

// effectiveQuery strips the fuzzy marker from the raw query.
func (e *Engine) effectiveQuery() string {
	if e.FuzzyMode {
		return strings.TrimPrefix(e.Query, "/")
	}
	return e.Query
}

// Submit cancels any running scan and starts a fresh two-phase search from
// root. An empty query resets the engine to idle.
func (e *Engine) Submit(root *tree.Node, opts Options) {
	e.CancelScan()

	e.Results = e.Results[:0]
	clear(e.seen)
	e.Selected = 0
	e.Scanned = 0

	query := strings.ToLower(e.effectiveQuery())
	if query == "" {
		e.Active = false
		e.FocusResults = false
		return
	}

	e.quickPass(root, query, opts)
	e.startDeepScan(root.Path, query, opts)

	e.Active = true
	e.FocusResults = true
	e.Searching = true
}

// quickPass walks the already materialized subtree, appending matches in
// traversal order for instant feedback on the loaded portion of the tree.
func (e *Engine) quickPass(node *tree.Node, query string, opts Options) {
	if !opts.ShowHidden && strings.HasPrefix(node.Name, ".") && node.Depth > 0 {
		return
	}

	if opts.ShowFiles || node.IsDir {
		if r, ok := e.matchName(node.Name, query, node.IsDir, node.Path); ok {
			e.addResult(r)
		}
	}

	if node.Expanded {
		for _, child := range node.Children {
			e.quickPass(child, query, opts)
		}
	}
}

// matchName applies the phase-independent predicate: case-insensitive
// substring by default, subsequence scoring in fuzzy mode.
func (e *Engine) matchName(name, query string, isDir bool, path string) (Result, bool) {
	lower := strings.ToLower(name)
	if !e.FuzzyMode {
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

// addResult appends a result unless its path is already present.
func (e *Engine) addResult(r Result) bool {
	if _, dup := e.seen[r.Path]; dup {
		return false
	}
	e.seen[r.Path] = struct{}{}
	e.Results = append(e.Results, r)
	return true
}

// MoveDown advances the result selection.
func (e *Engine) MoveDown() {
	if e.Selected < len(e.Results)-1 {
		e.Selected++
	}
}

// MoveUp retreats the result selection.
func (e *Engine) MoveUp() {
	if e.Selected > 0 {
		e.Selected--
	}
}

// SetSelected moves the selection with bounds checking.
func (e *Engine) SetSelected(i int) {
	if i >= 0 && i < len(e.Results) {
		e.Selected = i
	}
}

// SelectedResult returns the result under the cursor.
func (e *Engine) SelectedResult() (Result, bool) {
	if e.Selected < 0 || e.Selected >= len(e.Results) {
		return Result{}, false
	}
	return e.Results[e.Selected], true
}

// Close cancels any running scan, joins the worker and drops all result
// state, returning the engine to idle.
func (e *Engine) Close() {
	e.CancelScan()
	e.Active = false
	e.FocusResults = false
	e.Results = nil
	clear(e.seen)
	e.Selected = 0
	e.Scanned = 0
	e.Query = ""
	e.FuzzyMode = false
}
