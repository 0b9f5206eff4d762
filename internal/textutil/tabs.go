package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const DefaultTabWidth = 4

// TabAdvance returns how many cells a tab at column col occupies.
func TabAdvance(col, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return tabWidth - col%tabWidth
}

// ExpandTabs replaces tabs with spaces up to the next tab stop, counting
// columns per grapheme cluster.
func ExpandTabs(text string, tabWidth int) string {
	if !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if g.Str() == "\t" {
			n := TabAdvance(col, tabWidth)
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(g.Str())
		w := g.Width()
		if w < 1 {
			w = 1
		}
		col += w
	}
	return b.String()
}

// DisplayWidth reports the printable width of text, measuring grapheme
// clusters so emoji sequences count as a single glyph.
func DisplayWidth(text string) int {
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			w = 1
		}
		width += w
	}
	return width
}

// RuneWidth reports the cell width of a single rune, never less than one.
func RuneWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		return 1
	}
	return w
}

// TrimLastGrapheme removes the final user-perceived character of text.
func TrimLastGrapheme(text string) string {
	if text == "" {
		return ""
	}
	last := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		start, _ := g.Positions()
		last = start
	}
	return text[:last]
}

// TruncateToWidth shortens text to fit width cells, ending with an ellipsis
// when anything was cut.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if DisplayWidth(text) <= width {
		return text
	}
	const ellipsis = "…"
	if width == 1 {
		return ellipsis
	}
	target := width - 1
	var builder strings.Builder
	current := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w <= 0 {
			w = 1
		}
		if current+w > target {
			break
		}
		builder.WriteString(g.Str())
		current += w
	}
	builder.WriteString(ellipsis)
	return builder.String()
}
