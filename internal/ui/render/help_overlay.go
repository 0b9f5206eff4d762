package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	textutil "github.com/kk-code-lab/rfind/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(frame Frame) []string {
	findKey, replaceKey := keyLabels(frame.Find)

	sections := []helpOverlaySection{
		{
			title: "Editing",
			entries: []helpOverlayEntry{
				{keys: "←↑↓→", desc: "Move caret"},
				{keys: "Shift+←→", desc: "Extend selection"},
				{keys: "^B / ^T / ^U", desc: "Toggle bold / italic / underline"},
				{keys: "^Z / ^Y", desc: "Undo / redo"},
				{keys: "^S", desc: "Save"},
			},
		},
		{
			title: "Find & Replace",
			entries: []helpOverlayEntry{
				{keys: findKey, desc: "Open find (uses the selection as query)"},
				{keys: replaceKey, desc: "Open replace, or switch mode when open"},
				{keys: "↵ / ↑↓", desc: "Next match / previous, next"},
				{keys: "Tab", desc: "Switch between query and replacement"},
				{keys: "^V", desc: "Paste clipboard into the field"},
				{keys: "Esc", desc: "Close the panel"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "^Q", desc: "Quit"},
				{keys: "F1", desc: "Close this help"},
			},
		},
	}

	lines := make([]string, 0, 24)
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
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	pad := 14 - textutil.DisplayWidth(key)
	if pad < 1 {
		pad = 1
	}
	return fmt.Sprintf("  %s%s%s", key, strings.Repeat(" ", pad), desc)
}

func (r *Renderer) drawHelpOverlay(frame Frame, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		FillRow(r.screen, 0, y, w, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	titleWidth := textutil.DisplayWidth(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	maxRow := h - 1
	for _, line := range buildHelpOverlayLines(frame) {
		if row >= maxRow {
			break
		}
		text := strings.TrimRight(line, " ")
		text = textutil.TruncateToWidth(text, w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}
}
