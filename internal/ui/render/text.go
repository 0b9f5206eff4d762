package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	textutil "github.com/kk-code-lab/rfind/internal/textutil"
)

func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	return DrawText(r.screen, startX, y, maxWidth, text, style)
}

// DrawText writes text one grapheme cluster per cell group, stopping before
// maxWidth cells are exceeded. It returns the column after the last cell
// written. Tabs are expanded and control characters sanitised first.
func DrawText(screen tcell.Screen, startX, y, maxWidth int, text string, style tcell.Style) int {
	if screen == nil || maxWidth <= 0 {
		return startX
	}
	text = textutil.SanitizeTerminalText(textutil.ExpandTabs(text, textutil.DefaultTabWidth))
	x := startX
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if w <= 0 {
			w = 1
		}
		if x-startX+w > maxWidth {
			break
		}
		screen.SetContent(x, y, runes[0], runes[1:], style)
		for i := 1; i < w; i++ {
			screen.SetContent(x+i, y, ' ', nil, style)
		}
		x += w
	}
	return x
}

// FillRow paints width blank cells starting at x.
func FillRow(screen tcell.Screen, x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		screen.SetContent(x+i, y, ' ', nil, style)
	}
}
