// Package overlay paints match highlights onto stacked, height-capped cell
// canvases laid over an editor's content.
package overlay

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/host"
	"github.com/kk-code-lab/rfind/internal/textmatch"
)

// CanvasMaxHeight is the default number of content rows one canvas covers.
const CanvasMaxHeight = 5000

// State is the renderer's paint state.
type State int

const (
	// Empty means no canvases and nothing drawn.
	Empty State = iota
	// Populated means canvases are sized and every match is painted.
	Populated
	// ActiveOnly means the last paint only recolored matches whose
	// active status changed.
	ActiveOnly
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	case ActiveOnly:
		return "active-only"
	default:
		return "unknown"
	}
}

// Options holds the highlight colors and the canvas cap.
type Options struct {
	Default       tcell.Color
	Active        tcell.Color
	SegmentHeight int
}

// Match is a span with the color it was last painted in.
type Match struct {
	textmatch.Span
	Color tcell.Color
}

// Stats counts paint work since the renderer was created.
type Stats struct {
	Painted int
	Skipped int
	Clears  int
	Scrolls int
}

// Renderer owns the canvas segments for one editor. It is not safe for
// concurrent use.
type Renderer struct {
	editor host.Editor
	opts   Options
	logger *zap.Logger

	segments []*Canvas
	matches  []Match
	active   int
	state    State
	clean    bool
	stats    Stats
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for skipped glyphs.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty renderer over editor.
func New(editor host.Editor, opts Options, options ...Option) *Renderer {
	if opts.SegmentHeight <= 0 {
		opts.SegmentHeight = CanvasMaxHeight
	}
	r := &Renderer{
		editor: editor,
		opts:   opts,
		logger: zap.NewNop(),
		clean:  true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// SetColors changes the highlight colors used by the next paint.
func (r *Renderer) SetColors(def, active tcell.Color) {
	r.opts.Default = def
	r.opts.Active = active
}

// SetMatches replaces the painted match list. With recreate the segments are
// rebuilt from the editor's content size and every match is painted. Without
// it the segments are reused and only matches whose color changed are
// repainted.
func (r *Renderer) SetMatches(spans []textmatch.Span, active int, recreate bool) {
	if len(spans) == 0 {
		r.matches = nil
		r.active = 0
		r.Clear()
		if r.state != Empty {
			r.state = Empty
		}
		return
	}
	if active < 0 || active >= len(spans) {
		active = 0
	}

	next := make([]Match, len(spans))
	for i, s := range spans {
		next[i] = Match{Span: s, Color: r.colorFor(i == active)}
	}

	if recreate || r.segments == nil {
		r.recreate()
		r.paintAll(next, active)
		r.state = Populated
		return
	}
	if r.clean || !sameSpans(r.matches, next) {
		r.clearSegments()
		r.paintAll(next, active)
		r.state = Populated
		return
	}

	for i := range next {
		if next[i].Color != r.matches[i].Color {
			r.paintMatch(next[i], i == active)
		}
	}
	r.matches = next
	r.active = active
	r.state = ActiveOnly
}

func (r *Renderer) colorFor(active bool) tcell.Color {
	if active {
		return r.opts.Active
	}
	return r.opts.Default
}

func sameSpans(a, b []Match) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Span != b[i].Span {
			return false
		}
	}
	return true
}

// recreate allocates ceil(height/SegmentHeight) canvases. The last one holds
// the remainder, so no canvas is zero rows tall and empty content gets none.
func (r *Renderer) recreate() {
	width, height := r.editor.ContentSize()
	capRows := r.opts.SegmentHeight
	count := 0
	if height > 0 {
		count = (height + capRows - 1) / capRows
	}
	r.segments = make([]*Canvas, count)
	for i := range r.segments {
		h := capRows
		if i == count-1 {
			h = height - i*capRows
		}
		r.segments[i] = newCanvas(i*capRows, width, h)
	}
	r.clean = true
}

func (r *Renderer) paintAll(matches []Match, active int) {
	for i, m := range matches {
		r.paintMatch(m, i == active)
	}
	r.matches = matches
	r.active = active
}

func (r *Renderer) paintMatch(m Match, active bool) {
	scrolled := false
	for offset := m.Offset; offset < m.End(); offset++ {
		box, ok := r.editor.Bounds(offset)
		if !ok || box.Height <= 0 {
			r.stats.Skipped++
			r.logger.Debug("skip glyph without bounds", zap.Int("offset", offset))
			continue
		}
		if active && !scrolled {
			r.scrollIntoView(box)
			scrolled = true
		}
		if r.fill(box, m.Color) {
			r.stats.Painted++
			r.clean = false
		}
	}
}

// fill paints box into the segment holding its top edge and, when the box
// straddles a boundary, into the segment holding its bottom edge.
func (r *Renderer) fill(box host.Rect, color tcell.Color) bool {
	capRows := r.opts.SegmentHeight
	top := box.Top / capRows
	bottom := box.Bottom() / capRows
	painted := false
	for _, idx := range []int{top, bottom} {
		if idx < 0 || idx >= len(r.segments) {
			continue
		}
		seg := r.segments[idx]
		local := box
		local.Top -= seg.Top
		seg.Fill(local, color)
		painted = true
		if top == bottom {
			break
		}
	}
	return painted
}

func (r *Renderer) scrollIntoView(box host.Rect) {
	if r.editor.HasFocus() {
		return
	}
	vp := r.editor.Viewport()
	if box.Top >= vp.ScrollTop && box.Top < vp.ScrollTop+vp.Height {
		return
	}
	r.editor.SetScrollTop(max(box.Top-vp.Height/3, 0))
	r.stats.Scrolls++
}

// Clear blanks every segment, keeping the segments themselves. Clearing an
// already clean overlay does nothing.
func (r *Renderer) Clear() {
	if r.clean {
		return
	}
	r.clearSegments()
}

func (r *Renderer) clearSegments() {
	for _, seg := range r.segments {
		seg.Clear()
		r.stats.Clears++
	}
	r.clean = true
}

// Reset drops the matches and the segments.
func (r *Renderer) Reset() {
	r.matches = nil
	r.active = 0
	r.segments = nil
	r.clean = true
	r.state = Empty
}

// IsClear reports whether nothing is painted.
func (r *Renderer) IsClear() bool {
	return r.clean
}

// State returns the paint state.
func (r *Renderer) State() State {
	return r.state
}

// Segments returns the current canvas segments, top to bottom.
func (r *Renderer) Segments() []*Canvas {
	return r.segments
}

// Matches returns the painted matches.
func (r *Renderer) Matches() []Match {
	return r.matches
}

// Stats returns the paint counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ColorAt returns the highlight color of content cell (x, y).
func (r *Renderer) ColorAt(x, y int) (tcell.Color, bool) {
	if r.clean || y < 0 {
		return tcell.ColorDefault, false
	}
	idx := y / r.opts.SegmentHeight
	if idx >= len(r.segments) {
		return tcell.ColorDefault, false
	}
	seg := r.segments[idx]
	return seg.At(x, y-seg.Top)
}
