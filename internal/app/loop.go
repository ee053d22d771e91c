package app

import (
	"os"
	"os/signal"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/dtree/internal/bookmarks"
	"github.com/kk-code-lab/dtree/internal/config"
	"github.com/kk-code-lab/dtree/internal/dirsize"
	"github.com/kk-code-lab/dtree/internal/nav"
	"github.com/kk-code-lab/dtree/internal/search"
	statepkg "github.com/kk-code-lab/dtree/internal/state"
	inputui "github.com/kk-code-lab/dtree/internal/ui/input"
	renderui "github.com/kk-code-lab/dtree/internal/ui/render"
)

// pollInterval drives background drains while a search or size pass runs.
const pollInterval = 50 * time.Millisecond

func NewApplication(startPath string, cfg config.Config) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()

	state, err := newInitialState(startPath, cfg)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	w, h := screen.Size()
	state.ScreenWidth = w
	state.ScreenHeight = h

	actionCh := make(chan statepkg.Action, 10)
	reducer := statepkg.NewStateReducer()
	renderer := renderui.NewRenderer(screen)
	inputHandler := inputui.NewInputHandler(actionCh)
	inputHandler.SetState(state)

	return &Application{
		screen:   screen,
		state:    state,
		reducer:  reducer,
		renderer: renderer,
		input:    inputHandler,
		actionCh: actionCh,
	}, nil
}

func newInitialState(startPath string, cfg config.Config) (*statepkg.AppState, error) {
	state := &statepkg.AppState{
		ShowFiles:      cfg.Behavior.ShowFiles,
		ShowHidden:     cfg.Behavior.ShowHidden,
		FollowSymlinks: cfg.Behavior.FollowSymlinks,
	}

	navigation, err := nav.New(startPath, state.TreeOptions())
	if err != nil {
		return nil, err
	}
	state.Nav = navigation
	state.Search = search.NewEngine()
	state.Sizes = dirsize.New()

	marks, err := bookmarks.Load(bookmarks.DefaultPath(config.Dir()))
	if err != nil {
		// A corrupt bookmarks file should not block startup.
		marks, _ = bookmarks.Load("")
	}
	state.Marks = marks

	return state, nil
}

func (app *Application) Run() {
	app.renderer.Render(app.state)
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			eventChan <- app.screen.PollEvent()
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	var pollTimer *time.Timer
	var pollCh <-chan time.Time

	startPolling := func() {
		if pollTimer == nil {
			pollTimer = time.NewTimer(pollInterval)
		} else {
			if !pollTimer.Stop() {
				select {
				case <-pollTimer.C:
				default:
				}
			}
			pollTimer.Reset(pollInterval)
		}
		pollCh = pollTimer.C
	}

	stopPolling := func() {
		if pollTimer == nil {
			return
		}
		if !pollTimer.Stop() {
			select {
			case <-pollTimer.C:
			default:
			}
		}
		pollCh = nil
	}

	for !app.shouldQuit {
		if renderPending {
			app.renderer.Render(app.state)
			renderPending = false
		}

		if app.state.BackgroundBusy() {
			startPolling()
		} else {
			stopPolling()
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case <-pollCh:
			if app.state.PollBackground() {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case <-sigContCh:
			app.screen.Sync()
			renderPending = true
		}

		if app.processActions() {
			renderPending = true
		}

		// A final drain picks up messages that arrived between ticks.
		if app.state.PollBackground() {
			renderPending = true
		}
	}

	stopPolling()
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventResize:
		if !app.input.ProcessEvent(ev) {
			app.shouldQuit = true
		}
	case *tcell.EventMouse:
		return app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

// handleMouse maps primary clicks to row selection; a click on the selected
// row toggles it.
func (app *Application) handleMouse(ev *tcell.EventMouse) bool {
	if app.state == nil || ev.Buttons()&tcell.Button1 == 0 {
		return true
	}
	if app.state.HelpVisible || app.state.BookmarkOverlay || app.state.SearchInput {
		return true
	}
	if app.state.Search != nil && app.state.Search.Active {
		return true
	}

	_, y := ev.Position()
	if y < 1 || y >= app.state.ScreenHeight-1 {
		return true
	}

	idx := app.state.ScrollOffset + (y - 1)
	if idx < 0 || idx >= len(app.state.Nav.Rows) {
		return true
	}

	if idx == app.state.Nav.Selected {
		app.actionCh <- statepkg.ToggleExpandAction{}
	} else {
		app.state.Nav.Selected = idx
	}
	return true
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.QuitAction:
		app.shouldQuit = true
		return false
	case statepkg.QuitAndChangeAction:
		app.resultPath = app.quitTarget()
		app.shouldQuit = true
		return false
	case statepkg.YankPathAction:
		return app.handleYank()
	}

	if _, err := app.reducer.Reduce(app.state, action); err != nil {
		app.state.LastError = err
		app.state.StatusMsg = err.Error()
	}
	return true
}

// quitTarget picks the directory the shell should cd to: the selected row if
// it is a directory, otherwise its parent, falling back to the root.
func (app *Application) quitTarget() string {
	if row, ok := app.state.Nav.SelectedRow(); ok {
		if row.IsDir {
			return row.Path
		}
		return parentOf(row.Path)
	}
	if app.state.Nav.Root != nil {
		return app.state.Nav.Root.Path
	}
	return ""
}

func (app *Application) handleYank() bool {
	row, ok := app.state.Nav.SelectedRow()
	if !ok {
		return false
	}
	if err := clipboard.WriteAll(row.Path); err != nil {
		app.state.StatusMsg = "clipboard unavailable"
		return true
	}
	app.state.StatusMsg = "yanked " + row.Path
	return true
}
