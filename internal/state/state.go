package state

import (
	"github.com/kk-code-lab/dtree/internal/bookmarks"
	"github.com/kk-code-lab/dtree/internal/dirsize"
	"github.com/kk-code-lab/dtree/internal/nav"
	"github.com/kk-code-lab/dtree/internal/search"
	"github.com/kk-code-lab/dtree/internal/tree"
)

// AppState is the single source of truth. Only the reducer mutates it; the
// background workers never touch it and report through their own channels.
type AppState struct {
	Nav    *nav.Navigation
	Search *search.Engine
	Sizes  *dirsize.Cache
	Marks  *bookmarks.Store

	// Visibility filters, read once per operation.
	ShowFiles      bool
	ShowHidden     bool
	FollowSymlinks bool

	ShowSizes   bool
	HelpVisible bool

	// Search input line (typing a query, before submit).
	SearchInput bool
	QueryBuffer string

	// Bookmark overlay and pending single-key prompts.
	BookmarkOverlay  bool
	BookmarkAwaitSet bool
	BookmarkAwaitGo  bool

	ScreenWidth  int
	ScreenHeight int
	ScrollOffset int

	// Last operation-level failure, surfaced in the status line.
	StatusMsg string
	LastError error
}

// TreeOptions assembles the loader filters from the current toggles.
func (s *AppState) TreeOptions() tree.Options {
	return tree.Options{
		ShowFiles:      s.ShowFiles,
		ShowHidden:     s.ShowHidden,
		FollowSymlinks: s.FollowSymlinks,
	}
}

// SearchOptions mirrors TreeOptions for the search engine.
func (s *AppState) SearchOptions() search.Options {
	return search.Options{
		ShowFiles:      s.ShowFiles,
		ShowHidden:     s.ShowHidden,
		FollowSymlinks: s.FollowSymlinks,
	}
}

// VisibleRows is the number of tree rows that fit between the header and the
// status line.
func (s *AppState) VisibleRows() int {
	rows := s.ScreenHeight - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// updateScrollVisibility keeps the selection inside the viewport.
func (s *AppState) updateScrollVisibility() {
	visible := s.VisibleRows()
	if s.ScrollOffset > s.Nav.Selected {
		s.ScrollOffset = s.Nav.Selected
	} else if s.Nav.Selected >= s.ScrollOffset+visible {
		s.ScrollOffset = s.Nav.Selected - visible + 1
	}
	maxScroll := len(s.Nav.Rows) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if s.ScrollOffset > maxScroll {
		s.ScrollOffset = maxScroll
	}
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// BackgroundBusy reports whether either worker still owes the controller
// messages; the app loop polls faster while this holds.
func (s *AppState) BackgroundBusy() bool {
	if s.Search != nil && s.Search.Searching {
		return true
	}
	return s.Sizes != nil && s.Sizes.Busy()
}

// PollBackground drains both background channels into the state. Returns
// whether anything changed, as a repaint hint.
func (s *AppState) PollBackground() bool {
	updated := false
	if s.Search != nil && s.Search.Poll() {
		updated = true
	}
	if s.Sizes != nil && s.Sizes.Poll() {
		updated = true
	}
	return updated
}
