// Package host defines what the find/replace engine needs from the editor it
// is attached to.
package host

import (
	"github.com/kk-code-lab/rfind/internal/delta"
)

// Source tags where an edit or selection change came from.
type Source string

const (
	SourceUser   Source = "user"
	SourceAPI    Source = "api"
	SourceSilent Source = "silent"
)

// Range is a caret (Length 0) or selection measured in characters.
type Range struct {
	Offset int
	Length int
}

// End returns the offset just past the range.
func (r Range) End() int {
	return r.Offset + r.Length
}

// Rect is a glyph bounding box in content cells. Top is measured from the top
// of the content, not from the scrolled viewport.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Bottom returns the last row covered by the box.
func (r Rect) Bottom() int {
	return r.Top + r.Height - 1
}

// Viewport describes the scrolling window over the content.
type Viewport struct {
	ScrollTop    int
	Height       int
	ScrollHeight int
}

// TextChange is delivered after the editor's text changed.
type TextChange struct {
	Delta  delta.Delta
	Source Source
}

// SelectionChange is delivered after the caret or selection moved. OK is
// false when the editor lost its selection entirely.
type SelectionChange struct {
	Range  Range
	OK     bool
	Source Source
}

// Editor is the host editor seen by the find/replace engine.
type Editor interface {
	// Text returns the full plain text.
	Text() string
	// TextRange returns the text of [offset, offset+length).
	TextRange(offset, length int) string
	// Selection returns the current selection, or false when there is none.
	Selection() (Range, bool)
	// SetSelection moves the selection and scrolls it into view.
	SetSelection(r Range, source Source)
	// Bounds returns the box of the character at offset.
	Bounds(offset int) (Rect, bool)
	// ContentSize returns the size of the whole laid-out content in cells.
	ContentSize() (width, height int)
	Viewport() Viewport
	SetScrollTop(top int)
	HasFocus() bool
	Focus()
	Blur()
	// Format returns the inline formatting shared by [offset, offset+length).
	Format(offset, length int) delta.Attributes
	// ApplyDelta applies a structured edit.
	ApplyDelta(d delta.Delta, source Source) error
	// OnTextChange subscribes to text changes and returns the unsubscribe func.
	OnTextChange(fn func(TextChange)) (unsubscribe func())
	// OnSelectionChange subscribes to selection changes.
	OnSelectionChange(fn func(SelectionChange)) (unsubscribe func())
	// CutoffHistory stops the next edit from merging into the previous undo step.
	CutoffHistory()
}
