package input

import (
	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/dtree/internal/state"
)

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	return &InputHandler{actionChan: actionChan}
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// ProcessEvent converts a tcell event into an Action. Returns false when the
// application should quit.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return true
	}
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		ih.actionChan <- statepkg.QuitAction{}
		return false
	}

	s := ih.state
	helpVisible := s != nil && s.HelpVisible
	searchInput := s != nil && s.SearchInput
	resultsFocused := s != nil && s.Search != nil && s.Search.Active && s.Search.FocusResults
	awaitBookmark := s != nil && (s.BookmarkAwaitSet || s.BookmarkAwaitGo)
	bookmarkOverlay := s != nil && s.BookmarkOverlay

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.HelpToggleAction{}
		case tcell.KeyRune:
			if r := ev.Rune(); r == '?' || r == 'q' {
				ih.actionChan <- statepkg.HelpToggleAction{}
			}
		}
		return true
	}

	if awaitBookmark {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.BookmarkKeyAction{Key: 0}
		case tcell.KeyRune:
			ih.actionChan <- statepkg.BookmarkKeyAction{Key: ev.Rune()}
		}
		return true
	}

	if bookmarkOverlay {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.BookmarkListToggleAction{}
		case tcell.KeyRune:
			if r := ev.Rune(); r == 'b' || r == 'q' {
				ih.actionChan <- statepkg.BookmarkListToggleAction{}
			} else {
				ih.actionChan <- statepkg.BookmarkListToggleAction{}
				ih.actionChan <- statepkg.BookmarkGoStartAction{}
				ih.actionChan <- statepkg.BookmarkKeyAction{Key: r}
			}
		}
		return true
	}

	if searchInput {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.SearchCloseAction{}
		case tcell.KeyEnter:
			ih.actionChan <- statepkg.SearchSubmitAction{}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			ih.actionChan <- statepkg.SearchBackspaceAction{}
		case tcell.KeyRune:
			ih.actionChan <- statepkg.SearchCharAction{Char: ev.Rune()}
		}
		return true
	}

	if resultsFocused {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.SearchCloseAction{}
			return true
		case tcell.KeyEnter:
			ih.actionChan <- statepkg.SearchOpenAction{}
			return true
		case tcell.KeyUp:
			ih.actionChan <- statepkg.SearchNavigateAction{Direction: "up"}
			return true
		case tcell.KeyDown:
			ih.actionChan <- statepkg.SearchNavigateAction{Direction: "down"}
			return true
		case tcell.KeyTab:
			ih.actionChan <- statepkg.SearchFocusToggleAction{}
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'k':
				ih.actionChan <- statepkg.SearchNavigateAction{Direction: "up"}
			case 'j':
				ih.actionChan <- statepkg.SearchNavigateAction{Direction: "down"}
			case 'q':
				ih.actionChan <- statepkg.SearchCloseAction{}
			}
			return true
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if s != nil && s.Search != nil && s.Search.Active {
			ih.actionChan <- statepkg.SearchCloseAction{}
		}
		return true
	case tcell.KeyUp:
		ih.actionChan <- statepkg.NavigateUpAction{}
		return true
	case tcell.KeyDown:
		ih.actionChan <- statepkg.NavigateDownAction{}
		return true
	case tcell.KeyRight, tcell.KeyEnter:
		ih.actionChan <- statepkg.ToggleExpandAction{}
		return true
	case tcell.KeyLeft:
		ih.actionChan <- statepkg.CollapseAction{}
		return true
	case tcell.KeyPgUp:
		ih.actionChan <- statepkg.PageUpAction{}
		return true
	case tcell.KeyPgDn:
		ih.actionChan <- statepkg.PageDownAction{}
		return true
	case tcell.KeyHome:
		ih.actionChan <- statepkg.JumpTopAction{}
		return true
	case tcell.KeyEnd:
		ih.actionChan <- statepkg.JumpBottomAction{}
		return true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ih.actionChan <- statepkg.GoToParentAction{}
		return true
	case tcell.KeyTab:
		ih.actionChan <- statepkg.SearchFocusToggleAction{}
		return true
	case tcell.KeyRune:
		return ih.processNormalRune(ev.Rune())
	}
	return true
}

func (ih *InputHandler) processNormalRune(r rune) bool {
	switch r {
	case 'q':
		ih.actionChan <- statepkg.QuitAction{}
		return false
	case 'x':
		ih.actionChan <- statepkg.QuitAndChangeAction{}
		return false
	case 'k':
		ih.actionChan <- statepkg.NavigateUpAction{}
	case 'j':
		ih.actionChan <- statepkg.NavigateDownAction{}
	case 'l':
		ih.actionChan <- statepkg.ToggleExpandAction{}
	case 'h':
		ih.actionChan <- statepkg.CollapseAction{}
	case 'u':
		ih.actionChan <- statepkg.GoToParentAction{}
	case 'g':
		ih.actionChan <- statepkg.JumpTopAction{}
	case 'G':
		ih.actionChan <- statepkg.JumpBottomAction{}
	case 's':
		ih.actionChan <- statepkg.ToggleShowFilesAction{}
	case '.':
		ih.actionChan <- statepkg.ToggleHiddenFilesAction{}
	case 'z':
		ih.actionChan <- statepkg.ToggleSizesAction{}
	case 'r', 'R':
		ih.actionChan <- statepkg.RefreshAction{}
	case '/', 'f':
		ih.actionChan <- statepkg.SearchStartAction{}
	case 'y':
		ih.actionChan <- statepkg.YankPathAction{}
	case 'b':
		ih.actionChan <- statepkg.BookmarkListToggleAction{}
	case 'B':
		ih.actionChan <- statepkg.BookmarkSetStartAction{}
	case '\'':
		ih.actionChan <- statepkg.BookmarkGoStartAction{}
	case '?':
		ih.actionChan <- statepkg.HelpToggleAction{}
	}
	return true
}
