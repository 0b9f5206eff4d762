package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/textutil"
)

// formatMarker stands in for invisible formatting characters in the document.
const formatMarker = '·'

// Highlighter reports the match highlight color of a content cell.
type Highlighter interface {
	HighlightAt(x, y int) (tcell.Color, bool)
}

// Drawer is a floating element drawn over the document, such as the
// find/replace panel.
type Drawer interface {
	Draw(screen tcell.Screen, theme ColorTheme)
}

// FindStatus summarises the find panel for the status line.
type FindStatus struct {
	Open       bool
	Mode       string
	Query      string
	Counter    string
	FindKey    string
	ReplaceKey string
}

// Frame is everything drawn in one pass.
type Frame struct {
	Doc        *document.Document
	Highlights Highlighter
	Panel      Drawer
	FileName   string
	Dirty      bool
	Message    string
	Find       FindStatus
	ShowHelp   bool
}

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
	}
}

// Theme returns the colors in use.
func (r *Renderer) Theme() ColorTheme {
	return r.theme
}

// DocumentHeight returns the rows left for the document on a screen of height h.
func DocumentHeight(h int) int {
	if h <= 1 {
		return 0
	}
	return h - 1
}

// Render draws the entire UI for frame
func (r *Renderer) Render(frame Frame) {
	r.screen.Clear()
	r.screen.HideCursor()

	w, h := r.screen.Size()
	if frame.ShowHelp {
		r.drawHelpOverlay(frame, w, h)
		r.screen.Show()
		return
	}

	if frame.Doc != nil {
		r.drawDocument(frame, w, DocumentHeight(h))
	}
	r.drawStatusLine(frame, w, h)
	if frame.Panel != nil {
		frame.Panel.Draw(r.screen, r.theme)
	}

	r.screen.Show()
}

func (r *Renderer) drawDocument(frame Frame, w, viewHeight int) {
	doc := frame.Doc
	layout := doc.Layout()
	lineHeight := layout.LineHeight()
	scrollTop := doc.Viewport().ScrollTop
	sel, hasSel := doc.Selection()
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)

	for sy := 0; sy < viewHeight; sy++ {
		cy := scrollTop + sy
		for x := 0; x < w; x++ {
			style := baseStyle
			if frame.Highlights != nil {
				if color, ok := frame.Highlights.HighlightAt(x, cy); ok {
					style = style.Background(color).Foreground(r.theme.HighlightFg)
				}
			}
			r.screen.SetContent(x, sy, ' ', nil, style)
		}
		if cy%lineHeight != 0 {
			continue
		}
		for _, g := range layout.Row(cy / lineHeight) {
			if g.Col >= w {
				break
			}
			style := glyphStyle(baseStyle, g)
			if frame.Highlights != nil {
				if color, ok := frame.Highlights.HighlightAt(g.Col, cy); ok {
					style = style.Background(color).Foreground(r.theme.HighlightFg)
				}
			}
			if hasSel && sel.Length > 0 && g.Offset >= sel.Offset && g.Offset < sel.End() {
				style = style.Background(r.theme.SelectionBg).Foreground(r.theme.SelectionFg)
			}
			r.drawGlyph(g, sy, w, style)
		}
	}

	if doc.HasFocus() && hasSel && sel.Length == 0 {
		col, row := layout.CaretCell(sel.Offset)
		cy := row*lineHeight - scrollTop
		if cy >= 0 && cy < viewHeight && col < w {
			r.screen.ShowCursor(col, cy)
		}
	}
}

func glyphStyle(base tcell.Style, g document.Glyph) tcell.Style {
	style := base
	if g.Attrs["bold"] != "" {
		style = style.Bold(true)
	}
	if g.Attrs["italic"] != "" {
		style = style.Italic(true)
	}
	if g.Attrs["underline"] != "" {
		style = style.Underline(true)
	}
	return style
}

func (r *Renderer) drawGlyph(g document.Glyph, y, maxX int, style tcell.Style) {
	switch g.Rune {
	case '\n':
		r.screen.SetContent(g.Col, y, ' ', nil, style)
		return
	case '\t':
		for i := 0; i < g.Width && g.Col+i < maxX; i++ {
			r.screen.SetContent(g.Col+i, y, ' ', nil, style)
		}
		return
	}
	ru := g.Rune
	switch {
	case textutil.IsFormattingRune(ru):
		ru = formatMarker
		style = style.Dim(true)
	case textutil.IsControl(ru):
		ru = '?'
	}
	r.screen.SetContent(g.Col, y, ru, nil, style)
	for i := 1; i < g.Width && g.Col+i < maxX; i++ {
		r.screen.SetContent(g.Col+i, y, ' ', nil, style)
	}
}

func (r *Renderer) drawStatusLine(frame Frame, w, h int) {
	if h <= 0 {
		return
	}
	y := h - 1
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	FillRow(r.screen, 0, y, w, style)

	left := formatStatusLeft(frame)
	right := buildFooterHelpText(frame)
	if frame.Message != "" {
		right = " " + frame.Message + " "
	}

	rightWidth := textutil.DisplayWidth(right)
	leftWidth := w - rightWidth
	if leftWidth < w/2 {
		leftWidth = w / 2
		right = textutil.TruncateToWidth(right, w-leftWidth)
		rightWidth = textutil.DisplayWidth(right)
	}
	r.drawTextLine(0, y, leftWidth, textutil.TruncateToWidth(left, leftWidth), style.Bold(true))

	rightStyle := style
	if frame.Message != "" {
		rightStyle = rightStyle.Foreground(r.theme.MessageFg)
	}
	r.drawTextLine(w-rightWidth, y, rightWidth, right, rightStyle)
}
