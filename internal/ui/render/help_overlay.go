package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/dtree/internal/state"
	"github.com/kk-code-lab/dtree/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines() []string {
	sections := []helpOverlaySection{
		{
			title: "Navigation",
			entries: []helpOverlayEntry{
				{keys: "↑/↓ or k/j", desc: "Move selection"},
				{keys: "↵ or → or l", desc: "Expand / collapse directory"},
				{keys: "← or h", desc: "Collapse, or jump to parent row"},
				{keys: "u or ⌫", desc: "Make parent the root"},
				{keys: "g / G", desc: "Jump to top / bottom"},
				{keys: "PgUp/PgDn", desc: "Move a page"},
			},
		},
		{
			title: "Search",
			entries: []helpOverlayEntry{
				{keys: "/ or f", desc: "Start a search (prefix query with / for fuzzy)"},
				{keys: "Tab", desc: "Toggle focus tree / results"},
				{keys: "↵", desc: "Reveal selected result in the tree"},
				{keys: "Esc", desc: "Close search"},
			},
		},
		{
			title: "View",
			entries: []helpOverlayEntry{
				{keys: "s", desc: "Show / hide files"},
				{keys: ".", desc: "Show / hide hidden entries"},
				{keys: "z", desc: "Show / hide directory sizes"},
				{keys: "r", desc: "Refresh expanded directories"},
			},
		},
		{
			title: "Bookmarks & actions",
			entries: []helpOverlayEntry{
				{keys: "b", desc: "List bookmarks"},
				{keys: "B", desc: "Bookmark selected directory"},
				{keys: "'", desc: "Go to bookmark"},
				{keys: "y", desc: "Yank path to clipboard"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q", desc: "Quit"},
				{keys: "x", desc: "Quit and cd to selection"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "?", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 32)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}

	return lines
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeName(entry.keys)
	desc := textutil.SanitizeName(entry.desc)
	return fmt.Sprintf("  %-14s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillLine(0, w, y, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	titleWidth := r.measureTextWidth(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	lines := buildHelpOverlayLines()
	row := 2
	maxRow := h - 1
	for _, line := range lines {
		if row >= maxRow {
			break
		}
		text := strings.TrimRight(line, " ")
		text = r.truncateTextToWidth(text, w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	footer := "? toggle · Esc/q close"
	if h > 0 {
		footerText := r.truncateTextToWidth(footer, w)
		r.drawTextLine(0, h-1, w, footerText, headerStyle)
	}
}

func (r *Renderer) drawBookmarkOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillLine(0, w, y, baseStyle)
	}

	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	r.drawTextLine(0, 0, w, " Bookmarks ", headerStyle)

	row := 2
	maxRow := h - 1
	marks := state.Marks.List()
	if len(marks) == 0 {
		r.drawTextLine(2, row, w-4, "no bookmarks yet (press B to add one)", baseStyle.Foreground(r.theme.HiddenFg))
		row++
	}
	for _, mark := range marks {
		if row >= maxRow {
			break
		}
		name := mark.Name
		if name == "" {
			name = mark.Path
		}
		line := fmt.Sprintf("  %s  %-20s %s", mark.Key, textutil.SanitizeName(name), textutil.SanitizeName(mark.Path))
		r.drawTextLine(2, row, w-4, r.truncateTextToWidth(line, w-4), baseStyle)
		row++
	}

	footer := "press a key to jump · Esc/b close"
	r.drawTextLine(0, h-1, w, r.truncateTextToWidth(footer, w), headerStyle)
}
