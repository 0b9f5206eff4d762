// Package findreplace ties the matcher, the overlay and the panel to a host
// editor. It owns the query, the match set and the active index.
package findreplace

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/debounce"
	"github.com/kk-code-lab/rfind/internal/host"
	"github.com/kk-code-lab/rfind/internal/overlay"
	"github.com/kk-code-lab/rfind/internal/textmatch"
)

// Controller is not safe for concurrent use. Debounced work is handed to the
// dispatch function so it runs on the caller's event loop.
type Controller struct {
	editor  host.Editor
	overlay *overlay.Renderer
	view    View
	logger  *zap.Logger

	opts       config.Options
	findKey    config.KeyBinding
	replaceKey config.KeyBinding

	open    bool
	mode    Mode
	query   string
	matches []textmatch.Span
	active  int

	research    *debounce.Debouncer
	unsubscribe []func()
	destroyed   bool
}

// Option configures a Controller.
type Option func(*settings)

type settings struct {
	logger   *zap.Logger
	clock    debounce.Clock
	dispatch debounce.Dispatch
	view     View
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock replaces the wall clock used for debouncing.
func WithClock(c debounce.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithDispatch routes debounced callbacks, e.g. into a tcell event loop.
func WithDispatch(fn debounce.Dispatch) Option {
	return func(s *settings) { s.dispatch = fn }
}

// WithView attaches the panel view.
func WithView(v View) Option {
	return func(s *settings) { s.view = v }
}

// New attaches a controller to editor. The panel starts closed.
func New(editor host.Editor, opts config.Options, options ...Option) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := settings{logger: zap.NewNop()}
	for _, opt := range options {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	c := &Controller{
		editor: editor,
		view:   s.view,
		logger: s.logger,
	}
	c.overlay = overlay.New(editor, overlay.Options{SegmentHeight: opts.SegmentHeight}, overlay.WithLogger(s.logger))

	var debounceOpts []debounce.Option
	if s.clock != nil {
		debounceOpts = append(debounceOpts, debounce.WithClock(s.clock))
	}
	if s.dispatch != nil {
		debounceOpts = append(debounceOpts, debounce.WithDispatch(s.dispatch))
	}
	c.research = debounce.New(opts.TextChangeDelay.Duration, c.researchAfterEdit, debounceOpts...)
	c.applyOptions(opts)
	return c, nil
}

// SetView attaches the panel view after construction.
func (c *Controller) SetView(v View) {
	c.view = v
	c.render()
}

// SetOptions swaps colors, shortcuts and delays, repainting current matches.
func (c *Controller) SetOptions(opts config.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	c.applyOptions(opts)
	if len(c.matches) > 0 && !c.research.Pending() {
		c.overlay.SetMatches(c.matches, c.active, true)
	}
	c.render()
	return nil
}

func (c *Controller) applyOptions(opts config.Options) {
	result, active, _ := opts.Colors()
	c.findKey, c.replaceKey, _ = opts.Keys()
	c.opts = opts
	c.overlay.SetColors(result, active)
	c.research.SetDelay(opts.TextChangeDelay.Duration)
}

// Options returns the active options.
func (c *Controller) Options() config.Options {
	return c.opts
}

// Overlay exposes the highlight renderer to the host view.
func (c *Controller) Overlay() *overlay.Renderer {
	return c.overlay
}

// HighlightAt returns the highlight color of a content cell.
func (c *Controller) HighlightAt(x, y int) (tcell.Color, bool) {
	return c.overlay.ColorAt(x, y)
}

// Show opens the panel and starts following editor changes.
func (c *Controller) Show() {
	if c.destroyed {
		return
	}
	if !c.open {
		c.open = true
		c.subscribe()
	}
	c.render()
}

// Hide closes the panel, forgets the query and clears the overlay.
func (c *Controller) Hide() {
	if !c.open {
		return
	}
	c.open = false
	c.query = ""
	c.active = 0
	c.matches = nil
	c.research.Cancel()
	c.unsubscribeAll()
	c.overlay.SetMatches(nil, 0, false)
	c.render()
}

// Destroy detaches the controller from the editor and the view for good.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.Hide()
	c.destroyed = true
	c.research.Cancel()
	c.overlay.Reset()
	if c.view != nil {
		c.view.Destroy()
		c.view = nil
	}
}

func (c *Controller) subscribe() {
	c.unsubscribe = append(c.unsubscribe,
		c.editor.OnTextChange(c.OnEditorTextChanged),
		c.editor.OnSelectionChange(c.OnEditorSelectionChanged),
	)
}

func (c *Controller) unsubscribeAll() {
	for _, off := range c.unsubscribe {
		off()
	}
	c.unsubscribe = nil
}

// IsOpen reports whether the panel is shown.
func (c *Controller) IsOpen() bool {
	return c.open
}

// Mode returns the panel mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// SetMode switches between find and replace.
func (c *Controller) SetMode(m Mode) {
	c.mode = m
	c.render()
}

// ToggleMode flips between find and replace.
func (c *Controller) ToggleMode() {
	if c.mode == ModeFind {
		c.SetMode(ModeReplace)
		return
	}
	c.SetMode(ModeFind)
}

// Query returns the committed query.
func (c *Controller) Query() string {
	return c.query
}

// Matches returns the current match set.
func (c *Controller) Matches() []textmatch.Span {
	return c.matches
}

// Active returns the active match index.
func (c *Controller) Active() int {
	return c.active
}

// State returns what the panel should show.
func (c *Controller) State() PanelState {
	return PanelState{
		Open:        c.open,
		Mode:        c.mode,
		Query:       c.query,
		Active:      c.active,
		Count:       len(c.matches),
		CustomClass: c.opts.CustomClass,
		PrevIcon:    c.opts.ResultPrevIcon,
		NextIcon:    c.opts.ResultNextIcon,
	}
}

func (c *Controller) render() {
	if c.view != nil {
		c.view.Update(c.State())
	}
}

// OnQueryChange commits query, searches the whole text and repaints.
func (c *Controller) OnQueryChange(query string) {
	c.research.Cancel()
	c.search(query, 0)
	c.render()
}

func (c *Controller) search(query string, active int) {
	c.query = query
	c.matches = textmatch.Find(c.editor.Text(), query)
	c.active = 0
	if active > 0 && active < len(c.matches) {
		c.active = active
	} else if active > 0 && len(c.matches) > 0 {
		c.active = len(c.matches) - 1
	}
	c.overlay.SetMatches(c.matches, c.active, true)
	c.logger.Debug("search",
		zap.Int("query_len", len([]rune(query))),
		zap.Int("matches", len(c.matches)))
}

// OnEditorTextChanged clears the now stale overlay at once and re-searches
// after the edits go quiet.
func (c *Controller) OnEditorTextChanged(host.TextChange) {
	c.overlay.Clear()
	c.research.Call()
}

func (c *Controller) researchAfterEdit() {
	if !c.open {
		return
	}
	c.search(c.query, 0)
	c.render()
}

// OnEditorSelectionChanged activates the match that contains the selection.
func (c *Controller) OnEditorSelectionChanged(change host.SelectionChange) {
	if !change.OK || c.research.Pending() {
		return
	}
	idx := textmatch.IndexCovering(c.matches, change.Range.Offset, change.Range.Length)
	if idx < 0 {
		return
	}
	c.activate(idx)
	c.render()
}

// OnEditorResized rebuilds the canvases for the new content size.
func (c *Controller) OnEditorResized() {
	if len(c.matches) == 0 || c.research.Pending() {
		c.overlay.Reset()
		return
	}
	c.overlay.SetMatches(c.matches, c.active, true)
}

func (c *Controller) activate(idx int) {
	c.active = idx
	c.overlay.SetMatches(c.matches, idx, false)
}

// Step moves the active match circularly by dir and selects it in the editor.
func (c *Controller) Step(dir int) {
	if c.research.Pending() {
		c.research.Flush()
	}
	n := len(c.matches)
	if n == 0 {
		return
	}
	idx := (c.active + dir) % n
	if idx < 0 {
		idx += n
	}
	c.activate(idx)
	span := c.matches[idx]
	c.editor.SetSelection(host.Range{Offset: span.Offset, Length: span.Length}, host.SourceSilent)
	c.render()
}
