package state

import "path/filepath"

// StateReducer applies actions to the AppState. It is the only writer of the
// tree, the flat projection, and both background subsystems' result state.
type StateReducer struct{}

// NewStateReducer creates a reducer.
func NewStateReducer() *StateReducer {
	return &StateReducer{}
}

// Reduce applies an action to state and returns the updated state. Failures
// of filesystem operations come back as errors for the status line; they
// never leave the state partially mutated.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== NAVIGATION =====

	case NavigateDownAction:
		if state.searchResultsFocused() {
			state.Search.MoveDown()
			return state, nil
		}
		if state.Nav.MoveDown() {
			state.afterProjectionChange()
		}
		return state, nil

	case NavigateUpAction:
		if state.searchResultsFocused() {
			state.Search.MoveUp()
			return state, nil
		}
		if state.Nav.MoveUp() {
			state.afterProjectionChange()
		}
		return state, nil

	case PageDownAction:
		state.moveSelectionBy(state.VisibleRows())
		return state, nil

	case PageUpAction:
		state.moveSelectionBy(-state.VisibleRows())
		return state, nil

	case JumpTopAction:
		state.Nav.Selected = 0
		state.afterProjectionChange()
		return state, nil

	case JumpBottomAction:
		if n := len(state.Nav.Rows); n > 0 {
			state.Nav.Selected = n - 1
		}
		state.afterProjectionChange()
		return state, nil

	case ToggleExpandAction:
		row, ok := state.Nav.SelectedRow()
		if !ok || !row.IsDir {
			return state, nil
		}
		if msg := state.Nav.Toggle(row.Path, state.TreeOptions()); msg != "" {
			state.StatusMsg = msg
		}
		state.afterProjectionChange()
		return state, nil

	case CollapseAction:
		row, ok := state.Nav.SelectedRow()
		if !ok {
			return state, nil
		}
		if row.IsDir && row.Expanded {
			if msg := state.Nav.Toggle(row.Path, state.TreeOptions()); msg != "" {
				state.StatusMsg = msg
			}
			state.afterProjectionChange()
			return state, nil
		}
		if row.Depth > 0 {
			if i, ok := state.Nav.IndexOf(filepath.Dir(row.Path)); ok {
				state.Nav.Selected = i
				state.afterProjectionChange()
			}
		}
		return state, nil

	case GoToParentAction:
		if err := state.Nav.GoToParent(state.TreeOptions()); err != nil {
			return state, err
		}
		state.afterRootChange()
		return state, nil

	case GoToPathAction:
		if a.Path == "" {
			return state, nil
		}
		if err := state.Nav.GoToDirectory(a.Path, state.TreeOptions()); err != nil {
			return state, err
		}
		state.afterRootChange()
		return state, nil

	case RefreshAction:
		state.reloadTree()
		return state, nil

	// ===== VIEW =====

	case ToggleShowFilesAction:
		state.ShowFiles = !state.ShowFiles
		state.reloadTree()
		state.resubmitSearch()
		return state, nil

	case ToggleHiddenFilesAction:
		state.ShowHidden = !state.ShowHidden
		state.reloadTree()
		state.resubmitSearch()
		return state, nil

	case ToggleSizesAction:
		state.ShowSizes = !state.ShowSizes
		if state.ShowSizes {
			state.requestVisibleSizes()
		}
		return state, nil

	case HelpToggleAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		state.afterProjectionChange()
		return state, nil

	// ===== SEARCH =====

	case SearchStartAction:
		state.SearchInput = true
		state.QueryBuffer = ""
		return state, nil

	case SearchCharAction:
		if state.SearchInput {
			state.QueryBuffer += string(a.Char)
		}
		return state, nil

	case SearchBackspaceAction:
		if state.SearchInput && state.QueryBuffer != "" {
			runes := []rune(state.QueryBuffer)
			state.QueryBuffer = string(runes[:len(runes)-1])
		}
		return state, nil

	case SearchSubmitAction:
		state.SearchInput = false
		state.Search.SetQuery(state.QueryBuffer)
		state.Search.Submit(state.Nav.Root, state.SearchOptions())
		return state, nil

	case SearchCloseAction:
		state.SearchInput = false
		state.QueryBuffer = ""
		state.Search.Close()
		return state, nil

	case SearchNavigateAction:
		if a.Direction == "up" {
			state.Search.MoveUp()
		} else {
			state.Search.MoveDown()
		}
		return state, nil

	case SearchFocusToggleAction:
		if state.Search.Active {
			state.Search.FocusResults = !state.Search.FocusResults
		}
		return state, nil

	case SearchOpenAction:
		state.openSearchResult()
		return state, nil

	// ===== BOOKMARKS =====

	case BookmarkListToggleAction:
		state.BookmarkOverlay = !state.BookmarkOverlay
		return state, nil

	case BookmarkSetStartAction:
		state.BookmarkAwaitSet = true
		state.BookmarkAwaitGo = false
		return state, nil

	case BookmarkGoStartAction:
		state.BookmarkAwaitGo = true
		state.BookmarkAwaitSet = false
		return state, nil

	case BookmarkKeyAction:
		return r.reduceBookmarkKey(state, a.Key)
	}

	return state, nil
}

func (r *StateReducer) reduceBookmarkKey(state *AppState, key rune) (*AppState, error) {
	defer func() {
		state.BookmarkAwaitSet = false
		state.BookmarkAwaitGo = false
	}()

	if key == 0 {
		return state, nil
	}

	switch {
	case state.BookmarkAwaitSet:
		row, ok := state.Nav.SelectedRow()
		if !ok {
			return state, nil
		}
		path := row.Path
		if !row.IsDir {
			path = filepath.Dir(path)
		}
		if err := state.Marks.Set(string(key), path, filepath.Base(path)); err != nil {
			return state, err
		}
		state.StatusMsg = "bookmarked " + path

	case state.BookmarkAwaitGo:
		mark, ok := state.Marks.Get(string(key))
		if !ok {
			return state, nil
		}
		if err := state.Nav.GoToDirectory(mark.Path, state.TreeOptions()); err != nil {
			return state, err
		}
		state.afterRootChange()
	}

	return state, nil
}

func (s *AppState) searchResultsFocused() bool {
	return s.Search != nil && s.Search.Active && s.Search.FocusResults
}

func (s *AppState) moveSelectionBy(delta int) {
	if len(s.Nav.Rows) == 0 {
		return
	}
	i := s.Nav.Selected + delta
	if i < 0 {
		i = 0
	} else if i >= len(s.Nav.Rows) {
		i = len(s.Nav.Rows) - 1
	}
	s.Nav.Selected = i
	s.afterProjectionChange()
}

// afterProjectionChange re-anchors the viewport and keeps the size column
// fed for newly visible directory rows.
func (s *AppState) afterProjectionChange() {
	s.updateScrollVisibility()
	if s.ShowSizes {
		s.requestVisibleSizes()
	}
}

// afterRootChange is afterProjectionChange plus the cross-subsystem
// invariants of a root swap: an active search belongs to the old root, so it
// is cancelled and closed.
func (s *AppState) afterRootChange() {
	s.Search.Close()
	s.ScrollOffset = 0
	s.StatusMsg = ""
	s.afterProjectionChange()
}

func (s *AppState) reloadTree() {
	s.Nav.Reload(s.TreeOptions())
	s.afterProjectionChange()
}

// resubmitSearch reruns an active search under the current filter options.
// A deep scan started under the old options must not outlive them: Submit
// cancels and joins it before walking again, so no stale match can reach
// the result list after a filter toggle.
func (s *AppState) resubmitSearch() {
	if s.Search != nil && s.Search.Active {
		s.Search.Submit(s.Nav.Root, s.SearchOptions())
	}
}

// requestVisibleSizes schedules size calculations for every directory row in
// the viewport. Resolved and in-flight paths are skipped by the cache.
func (s *AppState) requestVisibleSizes() {
	visible := s.VisibleRows()
	for i := s.ScrollOffset; i < s.ScrollOffset+visible && i < len(s.Nav.Rows); i++ {
		if row := s.Nav.Rows[i]; row.IsDir {
			s.Sizes.Request(row.Path)
		}
	}
}

// openSearchResult expands the tree down to the selected result and moves
// the cursor onto it, falling back to its parent directory when the result
// itself is filtered out of the tree view (a file while files are hidden).
func (s *AppState) openSearchResult() {
	result, ok := s.Search.SelectedResult()
	if !ok {
		return
	}

	opts := s.TreeOptions()
	if !s.Nav.ExpandPathTo(result.Path, opts) {
		s.Nav.ExpandPathTo(parentDir(result.Path), opts)
	}
	s.Search.Close()
	s.afterProjectionChange()
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
