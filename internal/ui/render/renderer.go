package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/dtree/internal/dirsize"
	statepkg "github.com/kk-code-lab/dtree/internal/state"
	"github.com/kk-code-lab/dtree/internal/textutil"
)

// Renderer handles all UI rendering
type Renderer struct {
	screen           tcell.Screen
	theme            ColorTheme
	runeWidthCache   [128]int // ASCII cache (0-127)
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map // For non-ASCII runes
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()

	w, h := r.screen.Size()

	r.drawHeader(state, w)

	if state.Search != nil && state.Search.Active || state.SearchInput {
		r.drawSearchPanel(state, w, h)
	} else {
		r.drawTree(state, w, h)
	}

	r.drawStatusLine(state, w, h)

	if state.HelpVisible {
		r.drawHelpOverlay(w, h)
	} else if state.BookmarkOverlay {
		r.drawBookmarkOverlay(state, w, h)
	}

	r.screen.Show()
}

// drawHeader renders the top bar with title and breadcrumb
func (r *Renderer) drawHeader(state *statepkg.AppState, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)

	endX := r.drawTextLine(0, 0, w, "dtree", headerStyle)
	if endX < w {
		r.screen.SetContent(endX, 0, ' ', nil, headerStyle)
		endX++
	}

	rootPath := ""
	if state.Nav != nil && state.Nav.Root != nil {
		rootPath = state.Nav.Root.Path
	}
	if rootPath == "" {
		rootPath = string(filepath.Separator)
	}

	if endX < w {
		crumb := r.fitBreadcrumb(formatBreadcrumb(rootPath), w-endX)
		crumb = textutil.SanitizeName(crumb)
		endX = r.drawTextLine(endX, 0, w-endX, crumb, headerStyle.Bold(true))
	}

	r.fillLine(endX, w, 0, headerStyle)
}

func formatBreadcrumb(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned == "/" {
		return "/"
	}
	return strings.ReplaceAll(strings.TrimPrefix(cleaned, "/"), "/", " › ")
}

// fitBreadcrumb trims the breadcrumb path to fit within the available width,
// keeping the end of the path.
func (r *Renderer) fitBreadcrumb(path string, width int) string {
	if width <= 0 {
		return ""
	}
	if r.measureTextWidth(path) <= width {
		return path
	}

	ellipsis := "…"
	ellipsisWidth := r.cachedRuneWidth('…')
	if ellipsisWidth < 0 {
		ellipsisWidth = 1
	}
	if width <= ellipsisWidth {
		return ellipsis
	}

	available := width - ellipsisWidth
	runes := []rune(path)
	resultRunes := []rune{}
	currentWidth := 0
	for i := len(runes) - 1; i >= 0; i-- {
		ruWidth := r.cachedRuneWidth(runes[i])
		if ruWidth < 0 {
			ruWidth = 0
		}
		if currentWidth+ruWidth > available {
			break
		}
		resultRunes = append([]rune{runes[i]}, resultRunes...)
		currentWidth += ruWidth
	}

	return ellipsis + string(resultRunes)
}

// drawTree renders the visible rows of the tree projection.
func (r *Renderer) drawTree(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background)
	bottomLimit := h - 1

	rows := state.Nav.Rows
	endIndex := state.ScrollOffset + state.VisibleRows()
	if endIndex > len(rows) {
		endIndex = len(rows)
	}

	y := 1
	for idx := state.ScrollOffset; idx < endIndex; idx++ {
		if y >= bottomLimit {
			break
		}
		row := rows[idx]
		isSelected := idx == state.Nav.Selected
		isHidden := strings.HasPrefix(row.Name, ".") && row.Depth > 0

		var rowStyle tcell.Style
		if isSelected {
			rowStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
		} else if row.IsDir {
			rowStyle = baseStyle.Foreground(r.theme.DirectoryFg)
		} else {
			rowStyle = baseStyle.Foreground(r.theme.FileFg)
		}
		if isHidden && !isSelected {
			rowStyle = rowStyle.Foreground(r.theme.HiddenFg)
		}

		arrow := "  "
		if row.IsDir {
			if row.Expanded {
				arrow = "▼ "
			} else {
				arrow = "▶ "
			}
		}

		sizeText := ""
		if state.ShowSizes && row.IsDir {
			sizeText = r.sizeColumn(state, row.Path)
		}
		sizeWidth := r.measureTextWidth(sizeText)

		prefix := strings.Repeat("  ", row.Depth) + arrow
		nameWidth := w - r.measureTextWidth(prefix) - sizeWidth - 1
		displayName := textutil.SanitizeName(row.Name)
		if row.HasError {
			displayName += " [!]"
		}
		if nameWidth > 0 {
			displayName = r.truncateTextToWidth(displayName, nameWidth)
		} else {
			displayName = ""
		}

		endX := r.drawTextLine(0, y, w, prefix+displayName, rowStyle)
		if row.HasError && !isSelected {
			// Redraw the marker in the error color
			markerX := endX - r.measureTextWidth(" [!]")
			if markerX >= 0 {
				r.drawTextLine(markerX, y, w-markerX, " [!]", rowStyle.Foreground(r.theme.ErrorFg))
			}
		}

		if sizeText != "" {
			sizeX := w - sizeWidth
			if sizeX > endX {
				sizeStyle := rowStyle
				if !isSelected {
					sizeStyle = rowStyle.Foreground(r.theme.SizeFg)
				}
				r.drawTextLine(sizeX, y, sizeWidth, sizeText, sizeStyle)
				r.fillLine(endX, sizeX, y, rowStyle)
				endX = w
			}
		}

		r.fillLine(endX, w, y, rowStyle)
		y++
	}

	for ; y < bottomLimit; y++ {
		r.fillLine(0, w, y, baseStyle)
	}
}

func (r *Renderer) sizeColumn(state *statepkg.AppState, path string) string {
	if entry, ok := state.Sizes.Get(path); ok {
		return dirsize.FormatSize(entry.Size, entry.Partial)
	}
	if state.Sizes.InFlight(path) {
		return "…"
	}
	return ""
}

// drawSearchPanel renders the query line and the result list.
func (r *Renderer) drawSearchPanel(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background)
	queryStyle := baseStyle.Foreground(r.theme.Foreground)
	cursorStyle := tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)

	query := state.QueryBuffer
	if !state.SearchInput && state.Search != nil {
		query = state.Search.Query
	}

	line := "> " + textutil.SanitizeName(query)
	endX := r.drawTextLine(0, 1, w, line, queryStyle)
	if state.SearchInput && endX < w {
		endX = r.drawStyledRune(endX, 1, w, '█', cursorStyle)
	}
	r.fillLine(endX, w, 1, queryStyle)

	eng := state.Search
	if eng == nil {
		return
	}

	bottomLimit := h - 1
	visible := bottomLimit - 2
	if visible < 1 {
		visible = 1
	}

	selected := eng.Selected
	scroll := 0
	if selected >= visible {
		scroll = selected - visible + 1
	}

	y := 2
	for idx := scroll; idx < len(eng.Results) && y < bottomLimit; idx++ {
		res := eng.Results[idx]
		isSelected := idx == selected && eng.FocusResults

		rowStyle := baseStyle.Foreground(r.theme.FileFg)
		if res.IsDir {
			rowStyle = baseStyle.Foreground(r.theme.DirectoryFg)
		}
		if isSelected {
			rowStyle = tcell.StyleDefault.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
		}
		matchStyle := rowStyle.Foreground(r.theme.MatchFg).Bold(true)
		if isSelected {
			matchStyle = rowStyle.Bold(true)
		}

		marker := "  "
		if isSelected {
			marker = "▶ "
		}
		x := r.drawTextLine(0, y, w, marker, rowStyle)

		name := textutil.SanitizeName(filepath.Base(res.Path))
		if res.Fuzzy {
			x = r.drawHighlightedText(x, y, w, name, res.MatchIndexes, rowStyle, matchStyle)
		} else {
			x = r.drawTextLine(x, y, w-x, name, rowStyle)
		}

		dir := textutil.SanitizeName(filepath.Dir(res.Path))
		if x < w {
			dirText := r.truncateTextToWidth("  "+dir, w-x)
			dirStyle := rowStyle
			if !isSelected {
				dirStyle = rowStyle.Foreground(r.theme.HiddenFg)
			}
			x = r.drawTextLine(x, y, w-x, dirText, dirStyle)
		}

		r.fillLine(x, w, y, rowStyle)
		y++
	}

	if len(eng.Results) == 0 && y < bottomLimit {
		msg := "no matches"
		if eng.Searching {
			msg = "searching…"
		}
		if eng.Query == "" {
			msg = "(type to search, prefix / for fuzzy)"
		}
		endX := r.drawTextLine(0, y, w, "  "+msg, baseStyle.Foreground(r.theme.HiddenFg))
		r.fillLine(endX, w, y, baseStyle)
		y++
	}

	for ; y < bottomLimit; y++ {
		r.fillLine(0, w, y, baseStyle)
	}
}

// drawStatusLine renders the bottom line with the selected path, background
// progress and transient errors.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	y := h - 1

	var left string
	switch {
	case state.StatusMsg != "":
		left = state.StatusMsg
	case state.Search != nil && state.Search.Active:
		if res, ok := state.Search.SelectedResult(); ok {
			left = res.Path
		} else {
			left = state.Search.Query
		}
	default:
		if row, ok := state.Nav.SelectedRow(); ok {
			left = row.Path
		}
	}
	left = textutil.SanitizeName(left)

	var right string
	if state.Search != nil && state.Search.Searching {
		right = fmt.Sprintf("searching… %d dirs scanned", state.Search.Scanned)
	} else if state.Search != nil && state.Search.Active {
		right = fmt.Sprintf("%d results", len(state.Search.Results))
	} else {
		right = "? help"
	}

	statusStyle := style
	if state.StatusMsg != "" {
		statusStyle = style.Foreground(r.theme.ErrorFg)
	}

	rightWidth := r.measureTextWidth(right)
	leftLimit := w - rightWidth - 1
	if leftLimit < 0 {
		leftLimit = 0
	}
	left = r.truncateTextToWidth(left, leftLimit)

	endX := r.drawTextLine(0, y, leftLimit, left, statusStyle)
	r.fillLine(endX, w, y, style)
	if rightWidth > 0 && w-rightWidth >= 0 {
		r.drawTextLine(w-rightWidth, y, rightWidth, right, style)
	}
}
