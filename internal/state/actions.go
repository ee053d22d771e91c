package state

// Action is the base interface for all state mutations
type Action interface{}

// ===== NAVIGATION ACTIONS =====

type NavigateUpAction struct{}
type NavigateDownAction struct{}
type PageUpAction struct{}
type PageDownAction struct{}
type JumpTopAction struct{}
type JumpBottomAction struct{}
type ToggleExpandAction struct{}
type CollapseAction struct{}
type GoToParentAction struct{}
type GoToPathAction struct {
	Path string
}
type RefreshAction struct{}

// ===== VIEW ACTIONS =====

type ToggleShowFilesAction struct{}
type ToggleHiddenFilesAction struct{}
type ToggleSizesAction struct{}
type HelpToggleAction struct{}
type ResizeAction struct {
	Width  int
	Height int
}
type YankPathAction struct{}

// ===== SEARCH ACTIONS =====

type SearchStartAction struct{}
type SearchCharAction struct {
	Char rune
}
type SearchBackspaceAction struct{}
type SearchSubmitAction struct{}
type SearchCloseAction struct{}
type SearchNavigateAction struct {
	Direction string // "up" or "down"
}
type SearchFocusToggleAction struct{}
type SearchOpenAction struct{}

// ===== BOOKMARK ACTIONS =====

type BookmarkListToggleAction struct{}
type BookmarkSetStartAction struct{}
type BookmarkGoStartAction struct{}
type BookmarkKeyAction struct {
	Key rune
}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}          // q - return to original directory
type QuitAndChangeAction struct{} // x - change shell to current root
