package document

import (
	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/textutil"
)

// Glyph is one laid-out character.
type Glyph struct {
	Offset int
	Rune   rune
	Col    int
	Width  int
	Attrs  delta.Attributes
}

type glyphPos struct {
	row   int
	col   int
	width int
}

// Layout maps characters to rows and columns for a given wrap width.
type Layout struct {
	rows       [][]Glyph
	pos        []glyphPos
	wrapWidth  int
	lineHeight int
}

func buildLayout(runes []rune, attrs []delta.Attributes, wrapWidth, lineHeight int) *Layout {
	if lineHeight < 1 {
		lineHeight = 1
	}
	l := &Layout{
		rows:       [][]Glyph{nil},
		pos:        make([]glyphPos, len(runes)),
		wrapWidth:  wrapWidth,
		lineHeight: lineHeight,
	}
	row, col := 0, 0
	for i, r := range runes {
		var w int
		switch r {
		case '\n':
			w = 1
		case '\t':
			w = textutil.TabAdvance(col, textutil.DefaultTabWidth)
		default:
			w = textutil.RuneWidth(r)
		}
		if r != '\n' && wrapWidth > 0 && col > 0 && col+w > wrapWidth {
			row++
			col = 0
			l.rows = append(l.rows, nil)
			if r == '\t' {
				w = textutil.DefaultTabWidth
			}
		}
		l.pos[i] = glyphPos{row: row, col: col, width: w}
		l.rows[row] = append(l.rows[row], Glyph{Offset: i, Rune: r, Col: col, Width: w, Attrs: attrs[i]})
		col += w
		if r == '\n' {
			row++
			col = 0
			l.rows = append(l.rows, nil)
		}
	}
	return l
}

// RowCount returns the number of text rows.
func (l *Layout) RowCount() int {
	return len(l.rows)
}

// Row returns the glyphs on text row i.
func (l *Layout) Row(i int) []Glyph {
	if i < 0 || i >= len(l.rows) {
		return nil
	}
	return l.rows[i]
}

// LineHeight returns how many cell rows each text row occupies.
func (l *Layout) LineHeight() int {
	return l.lineHeight
}

// Height returns the content height in cell rows.
func (l *Layout) Height() int {
	return len(l.rows) * l.lineHeight
}

// Width returns the widest row in cells, or the wrap width when wrapping.
func (l *Layout) Width() int {
	if l.wrapWidth > 0 {
		return l.wrapWidth
	}
	widest := 0
	for _, row := range l.rows {
		if n := len(row); n > 0 {
			last := row[n-1]
			if end := last.Col + last.Width; end > widest {
				widest = end
			}
		}
	}
	return widest
}

func (l *Layout) bounds(offset int) (glyphPos, bool) {
	if offset < 0 || offset >= len(l.pos) {
		return glyphPos{}, false
	}
	return l.pos[offset], true
}

// RowOf returns the text row holding offset. Offsets at the end of the text
// map to the last row.
func (l *Layout) RowOf(offset int) int {
	if p, ok := l.bounds(offset); ok {
		return p.row
	}
	if offset < 0 {
		return 0
	}
	return len(l.rows) - 1
}

// OffsetAt returns the character offset under the cell (x, y) of the content.
func (l *Layout) OffsetAt(x, y int) int {
	if y < 0 {
		return 0
	}
	row := y / l.lineHeight
	if row >= len(l.rows) {
		return len(l.pos)
	}
	glyphs := l.rows[row]
	for _, g := range glyphs {
		if x < g.Col+g.Width {
			return g.Offset
		}
	}
	if n := len(glyphs); n > 0 {
		last := glyphs[n-1]
		if last.Rune == '\n' {
			return last.Offset
		}
		return last.Offset + 1
	}
	// Empty row: it starts right after the previous row's newline.
	for r := row - 1; r >= 0; r-- {
		if n := len(l.rows[r]); n > 0 {
			return l.rows[r][n-1].Offset + 1
		}
	}
	return 0
}

// CaretCell returns the column and text row where a caret before offset is
// drawn. Offsets past the last character land after it.
func (l *Layout) CaretCell(offset int) (col, row int) {
	if p, ok := l.bounds(offset); ok {
		return p.col, p.row
	}
	if offset <= 0 || len(l.pos) == 0 {
		return 0, 0
	}
	last := l.pos[len(l.pos)-1]
	lastRow := l.rows[last.row]
	if g := lastRow[len(lastRow)-1]; g.Rune == '\n' {
		return 0, last.row + 1
	}
	return last.col + last.width, last.row
}
