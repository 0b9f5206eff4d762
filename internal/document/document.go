// Package document is an in-memory editor buffer that implements host.Editor.
//
// It keeps one attribute set per character, lays text out in terminal cells,
// tracks a single selection and an undo history, and notifies subscribers of
// text and selection changes synchronously.
package document

import (
	"fmt"
	"time"

	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/host"
)

// Document is not safe for concurrent use.
type Document struct {
	runes []rune
	attrs []delta.Attributes

	selection host.Range
	hasSel    bool
	focused   bool

	wrapWidth  int
	viewHeight int
	scrollTop  int
	lineHeight int
	layout     *Layout

	history  *History
	applying bool

	textSubs      subscribers[host.TextChange]
	selectionSubs subscribers[host.SelectionChange]
}

var _ host.Editor = (*Document)(nil)

// Option configures a Document.
type Option func(*Document)

// WithLineHeight makes every text row occupy n cell rows.
func WithLineHeight(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.lineHeight = n
		}
	}
}

// WithHistory sets the undo merge delay and depth. A nil clock uses time.Now.
func WithHistory(delay time.Duration, maxEntries int, now func() time.Time) Option {
	return func(d *Document) {
		d.history = newHistory(delay, maxEntries, now)
	}
}

// WithSize sets the wrap width and viewport height.
func WithSize(width, height int) Option {
	return func(d *Document) {
		d.wrapWidth = width
		d.viewHeight = height
	}
}

// New creates a document holding text with no formatting.
func New(text string, opts ...Option) *Document {
	d := &Document{
		lineHeight: 1,
		viewHeight: 24,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.history == nil {
		d.history = newHistory(defaultHistoryDelay, defaultHistoryDepth, nil)
	}
	d.runes = []rune(text)
	d.attrs = make([]delta.Attributes, len(d.runes))
	return d
}

// Len returns the number of characters.
func (d *Document) Len() int {
	return len(d.runes)
}

// Text returns the full plain text.
func (d *Document) Text() string {
	return string(d.runes)
}

// TextRange returns the text of [offset, offset+length), clamped to the document.
func (d *Document) TextRange(offset, length int) string {
	start, end := d.clamp(offset, length)
	return string(d.runes[start:end])
}

func (d *Document) clamp(offset, length int) (int, int) {
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(d.runes) {
		start = len(d.runes)
	}
	end := offset + length
	if end > len(d.runes) {
		end = len(d.runes)
	}
	if end < start {
		end = start
	}
	return start, end
}

// Contents returns the document as a delta of inserts.
func (d *Document) Contents() delta.Delta {
	return d.contentsRange(0, len(d.runes))
}

func (d *Document) contentsRange(start, end int) delta.Delta {
	out := delta.New()
	for i := start; i < end; {
		j := i + 1
		for j < end && d.attrs[j].Equal(d.attrs[i]) {
			j++
		}
		out.Insert(string(d.runes[i:j]), d.attrs[i])
		i = j
	}
	return *out
}

// Format returns the attributes shared by every character of the range. For a
// caret it returns the formatting of the character before it.
func (d *Document) Format(offset, length int) delta.Attributes {
	start, end := d.clamp(offset, length)
	if start == end {
		if start > 0 {
			return d.attrs[start-1].Clone()
		}
		return nil
	}
	shared := d.attrs[start].Clone()
	for i := start + 1; i < end && len(shared) > 0; i++ {
		for k, v := range shared {
			if d.attrs[i][k] != v {
				delete(shared, k)
			}
		}
	}
	return shared.Clone()
}

// Selection returns the current selection.
func (d *Document) Selection() (host.Range, bool) {
	return d.selection, d.hasSel
}

// SetSelection moves the selection, scrolls it into view and notifies listeners.
func (d *Document) SetSelection(r host.Range, source host.Source) {
	start, end := d.clamp(r.Offset, r.Length)
	d.selection = host.Range{Offset: start, Length: end - start}
	d.hasSel = true
	d.scrollIntoView(start)
	if source != host.SourceSilent {
		d.selectionSubs.emit(host.SelectionChange{Range: d.selection, OK: true, Source: source})
	}
}

// ClearSelection drops the selection.
func (d *Document) ClearSelection(source host.Source) {
	if !d.hasSel {
		return
	}
	d.hasSel = false
	d.selection = host.Range{}
	if source != host.SourceSilent {
		d.selectionSubs.emit(host.SelectionChange{Source: source})
	}
}

// HasFocus reports whether the document holds input focus.
func (d *Document) HasFocus() bool {
	return d.focused
}

// Focus gives the document input focus.
func (d *Document) Focus() {
	d.focused = true
}

// Blur removes input focus.
func (d *Document) Blur() {
	d.focused = false
}

// Layout returns the current layout, rebuilding it after edits or resizes.
func (d *Document) Layout() *Layout {
	if d.layout == nil {
		d.layout = buildLayout(d.runes, d.attrs, d.wrapWidth, d.lineHeight)
	}
	return d.layout
}

// Bounds returns the cell box of the character at offset.
func (d *Document) Bounds(offset int) (host.Rect, bool) {
	l := d.Layout()
	p, ok := l.bounds(offset)
	if !ok {
		return host.Rect{}, false
	}
	return host.Rect{
		Left:   p.col,
		Top:    p.row * l.lineHeight,
		Width:  p.width,
		Height: l.lineHeight,
	}, true
}

// ContentSize returns the laid-out content size in cells.
func (d *Document) ContentSize() (int, int) {
	l := d.Layout()
	return l.Width(), l.Height()
}

// SetSize changes the wrap width and the viewport height.
func (d *Document) SetSize(width, height int) {
	if width == d.wrapWidth && height == d.viewHeight {
		return
	}
	d.wrapWidth = width
	d.viewHeight = height
	d.layout = nil
	d.SetScrollTop(d.scrollTop)
}

// Viewport returns the scroll window.
func (d *Document) Viewport() host.Viewport {
	return host.Viewport{
		ScrollTop:    d.scrollTop,
		Height:       d.viewHeight,
		ScrollHeight: d.Layout().Height(),
	}
}

// SetScrollTop scrolls the content, clamped to the valid range.
func (d *Document) SetScrollTop(top int) {
	maxTop := d.Layout().Height() - d.viewHeight
	if maxTop < 0 {
		maxTop = 0
	}
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}
	d.scrollTop = top
}

func (d *Document) scrollIntoView(offset int) {
	l := d.Layout()
	top := l.RowOf(offset) * l.lineHeight
	bottom := top + l.lineHeight - 1
	switch {
	case top < d.scrollTop:
		d.SetScrollTop(top)
	case bottom >= d.scrollTop+d.viewHeight:
		d.SetScrollTop(bottom - d.viewHeight + 1)
	}
}

// ApplyDelta applies an edit, records it for undo and notifies listeners.
func (d *Document) ApplyDelta(change delta.Delta, source host.Source) error {
	if err := change.Validate(len(d.runes)); err != nil {
		return fmt.Errorf("apply %s: %w", change, err)
	}
	if len(change.Ops) == 0 {
		return nil
	}
	undo := change.Invert(d.contentsRange(0, min(change.BaseLength(), len(d.runes))))
	d.apply(change)
	if !d.applying && source != host.SourceSilent {
		d.history.record(change, undo)
	}

	d.textSubs.emit(host.TextChange{Delta: change, Source: source})

	if d.hasSel {
		start := transformOffset(change, d.selection.Offset, source == host.SourceUser)
		end := transformOffset(change, d.selection.End(), source == host.SourceUser)
		moved := host.Range{Offset: start, Length: end - start}
		if moved != d.selection {
			d.selection = moved
			if source != host.SourceSilent {
				d.selectionSubs.emit(host.SelectionChange{Range: moved, OK: true, Source: source})
			}
		}
	}
	return nil
}

func (d *Document) apply(change delta.Delta) {
	runes := make([]rune, 0, len(d.runes)+change.ChangeLength())
	attrs := make([]delta.Attributes, 0, cap(runes))
	pos := 0
	for _, op := range change.Ops {
		switch op.Kind() {
		case delta.OpRetain:
			for i := pos; i < pos+op.Retain; i++ {
				runes = append(runes, d.runes[i])
				attrs = append(attrs, applyFormat(d.attrs[i], op.Attributes))
			}
			pos += op.Retain
		case delta.OpDelete:
			pos += op.Delete
		case delta.OpInsert:
			for _, r := range op.Insert {
				runes = append(runes, r)
				attrs = append(attrs, op.Attributes.Clone())
			}
		}
	}
	runes = append(runes, d.runes[pos:]...)
	attrs = append(attrs, d.attrs[pos:]...)
	d.runes = runes
	d.attrs = attrs
	d.layout = nil
	d.SetScrollTop(d.scrollTop)
}

func applyFormat(base, format delta.Attributes) delta.Attributes {
	if len(format) == 0 {
		return base
	}
	out := base.Clone()
	if out == nil {
		out = delta.Attributes{}
	}
	for k, v := range format {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out.Clone()
}

// transformOffset moves a position through an edit. Inserts exactly at the
// position push it forward only when the edit came from the user typing there.
func transformOffset(change delta.Delta, pos int, pushOnInsert bool) int {
	index := 0
	for _, op := range change.Ops {
		if index > pos {
			break
		}
		switch op.Kind() {
		case delta.OpDelete:
			pos -= min(op.Delete, pos-index)
		case delta.OpInsert:
			if index < pos || pushOnInsert {
				pos += op.Len()
			}
			index += op.Len()
		default:
			index += op.Retain
		}
	}
	return pos
}

// InsertText inserts text at offset, inheriting the formatting before it.
func (d *Document) InsertText(offset int, text string, source host.Source) error {
	return d.ApplyDelta(*delta.New().Retain(offset).Insert(text, d.Format(offset, 0)), source)
}

// DeleteText removes length characters at offset.
func (d *Document) DeleteText(offset, length int, source host.Source) error {
	return d.ApplyDelta(*delta.New().Retain(offset).Delete(length), source)
}

// FormatText sets attributes on a range. Empty values remove attributes.
func (d *Document) FormatText(offset, length int, attrs delta.Attributes, source host.Source) error {
	return d.ApplyDelta(*delta.New().Retain(offset).Retain(length, attrs), source)
}

// History exposes the undo stack.
func (d *Document) History() *History {
	return d.history
}

// CutoffHistory closes the current undo step.
func (d *Document) CutoffHistory() {
	d.history.Cutoff()
}

// Undo reverts the most recent undo step. It reports false when there is nothing to undo.
func (d *Document) Undo() (bool, error) {
	return d.step(&d.history.undo, &d.history.redo, func(e historyEntry) delta.Delta { return e.undo })
}

// Redo re-applies the most recently undone step.
func (d *Document) Redo() (bool, error) {
	return d.step(&d.history.redo, &d.history.undo, func(e historyEntry) delta.Delta { return e.redo })
}

func (d *Document) step(from, to *[]historyEntry, pick func(historyEntry) delta.Delta) (bool, error) {
	if len(*from) == 0 {
		return false, nil
	}
	entry := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	d.history.Cutoff()
	d.applying = true
	err := d.ApplyDelta(pick(entry), host.SourceUser)
	d.applying = false
	if err != nil {
		*from = append(*from, entry)
		return false, err
	}
	*to = append(*to, entry)
	d.history.Cutoff()
	return true, nil
}
