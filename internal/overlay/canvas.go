package overlay

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rfind/internal/host"
)

type cell struct {
	x, y int
}

// Canvas is one height-capped paint surface. Rows are local to the segment;
// the segment's first row sits at content row Top.
type Canvas struct {
	Top    int
	Width  int
	Height int

	cells  map[cell]tcell.Color
	clears int
}

func newCanvas(top, width, height int) *Canvas {
	return &Canvas{
		Top:    top,
		Width:  width,
		Height: height,
		cells:  make(map[cell]tcell.Color),
	}
}

// Fill paints a rectangle given in local coordinates, clipped to the canvas.
func (c *Canvas) Fill(r host.Rect, color tcell.Color) {
	x0, y0, x1, y1 := c.clip(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.cells[cell{x, y}] = color
		}
	}
}

// ClearRect blanks a rectangle given in local coordinates.
func (c *Canvas) ClearRect(r host.Rect) {
	x0, y0, x1, y1 := c.clip(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			delete(c.cells, cell{x, y})
		}
	}
}

func (c *Canvas) clip(r host.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = max(r.Left, 0), max(r.Top, 0)
	x1, y1 = r.Left+r.Width, r.Top+r.Height
	if c.Width > 0 {
		x1 = min(x1, c.Width)
	}
	y1 = min(y1, c.Height)
	return x0, y0, x1, y1
}

// At reports the color painted at a local cell.
func (c *Canvas) At(x, y int) (tcell.Color, bool) {
	color, ok := c.cells[cell{x, y}]
	return color, ok
}

// Clear blanks the whole canvas.
func (c *Canvas) Clear() {
	clear(c.cells)
	c.clears++
}

// Painted returns the number of painted cells.
func (c *Canvas) Painted() int {
	return len(c.cells)
}
