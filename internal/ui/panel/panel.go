// Package panel draws the floating find/replace box and turns keys and mouse
// clicks on it into controller intents.
package panel

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/debounce"
	"github.com/kk-code-lab/rfind/internal/findreplace"
	"github.com/kk-code-lab/rfind/internal/textutil"
	"github.com/kk-code-lab/rfind/internal/ui/render"
)

const (
	maxWidth   = 52
	minWidth   = 24
	edgeMargin = 1
	labelWidth = 9
)

type focusTarget int

const (
	focusQuery focusTarget = iota
	focusReplacement
)

type element int

const (
	elemNone element = iota
	elemHandle
	elemToggle
	elemClose
	elemQuery
	elemPrev
	elemNext
	elemReplacement
	elemReplace
	elemReplaceAll
)

type region struct {
	elem   element
	x0, x1 int
	y      int
}

type dragState struct {
	active           bool
	startX, startY   int
	originX, originY int
}

// Panel is not safe for concurrent use; the query debounce hands its
// callback to the dispatch option.
type Panel struct {
	intents findreplace.Intents
	state   findreplace.PanelState
	logger  *zap.Logger
	paste   func() (string, error)

	query       field
	replacement field
	focus       focusTarget
	focused     bool
	committed   string
	debouncer   *debounce.Debouncer

	x, y       int
	screenW    int
	screenH    int
	buttonDown bool
	drag       dragState
	regions    []region
	lastErr    error
	destroyed  bool
}

var _ findreplace.View = (*Panel)(nil)

// Option configures a Panel.
type Option func(*settings)

type settings struct {
	delay    time.Duration
	clock    debounce.Clock
	dispatch debounce.Dispatch
	paste    func() (string, error)
	logger   *zap.Logger
}

// WithQueryDelay sets how long typing must pause before the query is committed.
func WithQueryDelay(d time.Duration) Option {
	return func(s *settings) { s.delay = d }
}

// WithClock replaces the wall clock used for the query debounce.
func WithClock(c debounce.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithDispatch routes the debounced commit, e.g. into the tcell event loop.
func WithDispatch(fn debounce.Dispatch) Option {
	return func(s *settings) { s.dispatch = fn }
}

// WithClipboard replaces the system clipboard reader used by Ctrl+V.
func WithClipboard(read func() (string, error)) Option {
	return func(s *settings) { s.paste = read }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New creates a closed panel forwarding user actions to intents.
func New(intents findreplace.Intents, opts ...Option) *Panel {
	s := settings{
		delay:  config.DefaultQueryDelay,
		paste:  clipboard.ReadAll,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	p := &Panel{
		intents:     intents,
		logger:      s.logger,
		paste:       s.paste,
		query:       field{label: "Find"},
		replacement: field{label: "Replace"},
		x:           edgeMargin,
		y:           edgeMargin,
	}
	var debounceOpts []debounce.Option
	if s.clock != nil {
		debounceOpts = append(debounceOpts, debounce.WithClock(s.clock))
	}
	if s.dispatch != nil {
		debounceOpts = append(debounceOpts, debounce.WithDispatch(s.dispatch))
	}
	p.debouncer = debounce.New(s.delay, p.commitQuery, debounceOpts...)
	return p
}

// SetQueryDelay changes the typing debounce.
func (p *Panel) SetQueryDelay(d time.Duration) {
	p.debouncer.SetDelay(d)
}

// Update receives the controller's state. A query that differs from the last
// one committed here replaces the input text.
func (p *Panel) Update(state findreplace.PanelState) {
	if p.destroyed {
		return
	}
	wasOpen := p.state.Open
	p.state = state
	if !state.Open {
		if wasOpen {
			p.reset()
		}
		return
	}
	if !wasOpen {
		p.focused = true
		p.focus = focusQuery
	}
	if state.Query != p.committed {
		p.debouncer.Cancel()
		p.query.value = state.Query
		p.committed = state.Query
	}
	if state.Mode == findreplace.ModeFind {
		p.focus = focusQuery
	}
}

func (p *Panel) reset() {
	p.debouncer.Cancel()
	p.query.value = ""
	p.replacement.value = ""
	p.committed = ""
	p.focus = focusQuery
	p.focused = false
	p.drag = dragState{}
	p.lastErr = nil
}

// Destroy drops pending work; the panel ignores everything afterwards.
func (p *Panel) Destroy() {
	p.reset()
	p.state = findreplace.PanelState{}
	p.destroyed = true
}

// Open reports whether the panel is shown.
func (p *Panel) Open() bool {
	return p.state.Open && !p.destroyed
}

// Focused reports whether keys go to the panel.
func (p *Panel) Focused() bool {
	return p.Open() && p.focused
}

// SetFocused moves key focus to or away from the panel.
func (p *Panel) SetFocused(focused bool) {
	p.focused = focused && p.Open()
}

// Query returns the text in the query input, committed or not.
func (p *Panel) Query() string {
	return p.query.value
}

// Replacement returns the text in the replacement input.
func (p *Panel) Replacement() string {
	return p.replacement.value
}

// Position returns the panel's top-left cell.
func (p *Panel) Position() (int, int) {
	return p.x, p.y
}

// Err returns the last replace error, cleared by the next edit.
func (p *Panel) Err() error {
	return p.lastErr
}

func (p *Panel) commitQuery() {
	if !p.Open() {
		return
	}
	p.committed = p.query.value
	p.intents.OnQueryChange(p.query.value)
}

func (p *Panel) flushQuery() bool {
	if !p.debouncer.Pending() {
		return false
	}
	p.debouncer.Flush()
	return true
}

func (p *Panel) activeField() *field {
	if p.focus == focusReplacement {
		return &p.replacement
	}
	return &p.query
}

func (p *Panel) edited() {
	p.lastErr = nil
	if p.focus == focusQuery {
		p.debouncer.Call()
	}
}

// HandleKey processes a key while the panel has focus. It reports whether
// the key was consumed.
func (p *Panel) HandleKey(ev *tcell.EventKey) bool {
	if !p.Focused() {
		return false
	}
	switch ev.Key() {
	case tcell.KeyEsc:
		p.intents.Hide()
	case tcell.KeyEnter:
		if p.focus == focusReplacement {
			p.replace(false)
			return true
		}
		if !p.flushQuery() {
			p.intents.Step(1)
		}
	case tcell.KeyUp:
		p.flushQuery()
		p.intents.Step(-1)
	case tcell.KeyDown:
		p.flushQuery()
		p.intents.Step(1)
	case tcell.KeyTab, tcell.KeyBacktab:
		p.cycleFocus()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.activeField().backspace() {
			p.edited()
		}
	case tcell.KeyCtrlU:
		if p.activeField().clear() {
			p.edited()
		}
	case tcell.KeyCtrlV:
		p.pasteClipboard()
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return false
		}
		if p.activeField().insert(string(ev.Rune())) {
			p.edited()
		}
	default:
		return false
	}
	return true
}

func (p *Panel) cycleFocus() {
	if p.state.Mode != findreplace.ModeReplace {
		p.focus = focusQuery
		return
	}
	if p.focus == focusQuery {
		p.focus = focusReplacement
		return
	}
	p.focus = focusQuery
}

func (p *Panel) pasteClipboard() {
	text, err := p.paste()
	if err != nil {
		p.logger.Warn("clipboard read failed", zap.Error(err))
		return
	}
	if p.activeField().insert(text) {
		p.edited()
	}
}

func (p *Panel) replace(all bool) {
	p.flushQuery()
	var err error
	if all {
		err = p.intents.ReplaceAll(p.replacement.value)
	} else {
		err = p.intents.ReplaceCurrent(p.replacement.value)
	}
	if err != nil {
		p.lastErr = err
		p.logger.Warn("replace from panel failed", zap.Bool("all", all), zap.Error(err))
	}
}

// HandleMouse processes a mouse event. It reports whether the event belongs
// to the panel; presses elsewhere take focus away from it.
func (p *Panel) HandleMouse(ev *tcell.EventMouse) bool {
	if !p.Open() {
		return false
	}
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0

	if !pressed {
		p.buttonDown = false
		if p.drag.active {
			p.drag.active = false
			return true
		}
		return p.contains(x, y)
	}
	if p.buttonDown {
		if p.drag.active {
			p.moveTo(p.drag.originX+x-p.drag.startX, p.drag.originY+y-p.drag.startY)
			return true
		}
		return p.contains(x, y)
	}
	p.buttonDown = true

	if !p.contains(x, y) {
		p.focused = false
		return false
	}
	p.focused = true
	p.click(p.hit(x, y), x, y)
	return true
}

func (p *Panel) click(elem element, x, y int) {
	switch elem {
	case elemHandle:
		p.drag = dragState{active: true, startX: x, startY: y, originX: p.x, originY: p.y}
	case elemClose:
		p.intents.Hide()
	case elemToggle:
		p.intents.ToggleMode()
	case elemPrev:
		p.flushQuery()
		p.intents.Step(-1)
	case elemNext:
		p.flushQuery()
		p.intents.Step(1)
	case elemQuery:
		p.focus = focusQuery
	case elemReplacement:
		p.focus = focusReplacement
	case elemReplace:
		p.replace(false)
	case elemReplaceAll:
		p.replace(true)
	}
}

func (p *Panel) size() (int, int) {
	w := maxWidth
	if p.screenW > 0 && w > p.screenW-2*edgeMargin {
		w = max(p.screenW-2*edgeMargin, minWidth)
	}
	h := 2
	if p.state.Mode == findreplace.ModeReplace {
		h = 3
	}
	return w, h
}

func (p *Panel) contains(x, y int) bool {
	w, h := p.size()
	return x >= p.x && x < p.x+w && y >= p.y && y < p.y+h
}

func (p *Panel) hit(x, y int) element {
	for _, r := range p.regions {
		if r.y == y && x >= r.x0 && x < r.x1 {
			return r.elem
		}
	}
	if y == p.y {
		return elemHandle
	}
	return elemNone
}

// moveTo places the panel, keeping it edgeMargin cells inside the screen.
func (p *Panel) moveTo(x, y int) {
	w, h := p.size()
	if p.screenW > 0 {
		x = min(x, p.screenW-w-edgeMargin)
	}
	if p.screenH > 0 {
		y = min(y, p.screenH-h-edgeMargin)
	}
	p.x = max(x, edgeMargin)
	p.y = max(y, edgeMargin)
}

// Resize records the screen size and pulls the panel back inside it.
func (p *Panel) Resize(w, h int) {
	p.screenW, p.screenH = w, h
	p.moveTo(p.x, p.y)
}

// Draw paints the panel on top of whatever is on screen.
func (p *Panel) Draw(screen tcell.Screen, theme render.ColorTheme) {
	if !p.Open() {
		return
	}
	sw, sh := screen.Size()
	if sw != p.screenW || sh != p.screenH {
		p.Resize(sw, sh)
	}
	w, _ := p.size()
	p.regions = p.regions[:0]

	p.drawTitle(screen, theme, w)
	p.drawQueryRow(screen, theme, w)
	if p.state.Mode == findreplace.ModeReplace {
		p.drawReplaceRow(screen, theme, w)
	}
}

func (p *Panel) addRegion(elem element, x0, x1, y int) {
	p.regions = append(p.regions, region{elem: elem, x0: x0, x1: x1, y: y})
}

func (p *Panel) drawTitle(screen tcell.Screen, theme render.ColorTheme, w int) {
	style := tcell.StyleDefault.Background(theme.PanelTitleBg).Foreground(theme.PanelTitleFg)
	render.FillRow(screen, p.x, p.y, w, style)

	title := " ⠿ Find"
	if p.state.Mode == findreplace.ModeReplace {
		title = " ⠿ Replace"
	}
	if p.state.CustomClass != "" {
		title += " · " + p.state.CustomClass
	}
	title = textutil.TruncateToWidth(title, w-6)
	render.DrawText(screen, p.x, p.y, w-6, title, style.Bold(true))

	toggleX := p.x + w - 5
	render.DrawText(screen, toggleX, p.y, 1, "⇄", style)
	p.addRegion(elemToggle, toggleX-1, toggleX+2, p.y)
	closeX := p.x + w - 2
	render.DrawText(screen, closeX, p.y, 1, "✕", style)
	p.addRegion(elemClose, closeX-1, closeX+2, p.y)
}

func (p *Panel) drawQueryRow(screen tcell.Screen, theme render.ColorTheme, w int) {
	y := p.y + 1
	style := tcell.StyleDefault.Background(theme.PanelBg).Foreground(theme.PanelFg)
	render.FillRow(screen, p.x, y, w, style)

	prev := textutil.TruncateToWidth(p.state.PrevIcon, 2)
	next := textutil.TruncateToWidth(p.state.NextIcon, 2)
	counter := p.state.Counter()
	if p.lastErr != nil {
		counter = "error"
	}

	right := p.x + w - 1
	nextX := right - textutil.DisplayWidth(next)
	render.DrawText(screen, nextX, y, right-nextX, next, style.Foreground(theme.ButtonFg))
	p.addRegion(elemNext, nextX-1, right+1, y)
	prevX := nextX - 1 - textutil.DisplayWidth(prev)
	render.DrawText(screen, prevX, y, nextX-prevX, prev, style.Foreground(theme.ButtonFg))
	p.addRegion(elemPrev, prevX-1, nextX-1, y)
	counterX := prevX - 2 - textutil.DisplayWidth(counter)
	render.DrawText(screen, counterX, y, prevX-counterX, counter, style.Foreground(theme.CounterFg))

	p.drawField(screen, theme, &p.query, focusQuery, elemQuery, y, counterX-1)
}

func (p *Panel) drawReplaceRow(screen tcell.Screen, theme render.ColorTheme, w int) {
	y := p.y + 2
	style := tcell.StyleDefault.Background(theme.PanelBg).Foreground(theme.PanelFg)
	render.FillRow(screen, p.x, y, w, style)

	const replaceLabel, allLabel = "[Replace]", "[All]"
	right := p.x + w - 1
	allX := right - len(allLabel)
	render.DrawText(screen, allX, y, len(allLabel), allLabel, style.Foreground(theme.ButtonFg))
	p.addRegion(elemReplaceAll, allX, right, y)
	replaceX := allX - 1 - len(replaceLabel)
	render.DrawText(screen, replaceX, y, len(replaceLabel), replaceLabel, style.Foreground(theme.ButtonFg))
	p.addRegion(elemReplace, replaceX, allX-1, y)

	p.drawField(screen, theme, &p.replacement, focusReplacement, elemReplacement, y, replaceX-1)
}

// drawField draws "label [input]" from the panel's left edge up to endX.
func (p *Panel) drawField(screen tcell.Screen, theme render.ColorTheme, f *field, target focusTarget, elem element, y, endX int) {
	style := tcell.StyleDefault.Background(theme.PanelBg).Foreground(theme.PanelFg)
	render.DrawText(screen, p.x+1, y, labelWidth-1, f.label, style)

	inputX := p.x + labelWidth
	width := endX - inputX
	if width <= 0 {
		return
	}
	inputStyle := tcell.StyleDefault.Background(theme.InputBg).Foreground(theme.InputFg)
	render.FillRow(screen, inputX, y, width, inputStyle)
	text, caret := f.visible(width)
	render.DrawText(screen, inputX, y, width, text, inputStyle)
	p.addRegion(elem, p.x, endX, y)

	if p.focused && p.focus == target {
		screen.ShowCursor(inputX+caret, y)
	}
}
