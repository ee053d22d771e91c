package app

import (
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/dtree/internal/state"
	inputui "github.com/kk-code-lab/dtree/internal/ui/input"
	renderui "github.com/kk-code-lab/dtree/internal/ui/render"
)

// Application represents the running app.
type Application struct {
	screen     tcell.Screen
	state      *statepkg.AppState
	reducer    *statepkg.StateReducer
	renderer   *renderui.Renderer
	input      *inputui.InputHandler
	actionCh   chan statepkg.Action
	shouldQuit bool
	resultPath string
}

// Close stops the background workers and releases the terminal.
func (app *Application) Close() error {
	app.state.Search.Close()
	app.state.Sizes.Close()
	close(app.actionCh)
	app.screen.Fini()
	return nil
}

// ResultPath returns the directory to report on exit, empty when the shell
// should stay where it was.
func (app *Application) ResultPath() string {
	return app.resultPath
}

// GetCwd returns current working directory.
func GetCwd() (string, error) {
	return os.Getwd()
}

func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return parent
}
