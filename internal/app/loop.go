package app

import (
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/debounce"
	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/findreplace"
	"github.com/kk-code-lab/rfind/internal/host"
	"github.com/kk-code-lab/rfind/internal/ui/panel"
	renderui "github.com/kk-code-lab/rfind/internal/ui/render"
)

const wheelStep = 3

// NewApplication opens the terminal and the document named in cfg.
func NewApplication(cfg Config) (*Application, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	// Parse mouse sequences so modified clicks don't leak as key events.
	screen.EnableMouse()

	app, err := newApplication(screen, cfg, nil)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	app.startWatchers()
	return app, nil
}

func newApplication(screen tcell.Screen, cfg Config, clock debounce.Clock) (*Application, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	doc, saved, err := loadDocument(cfg.Path)
	if err != nil {
		return nil, err
	}

	app := &Application{
		screen:     screen,
		doc:        doc,
		renderer:   renderui.NewRenderer(screen),
		logger:     log,
		path:       cfg.Path,
		configPath: cfg.ConfigPath,
		savedText:  saved,
		dispatchCh: make(chan func(), 16),
		done:       make(chan struct{}),
	}
	app.readClipboard, app.writeClipboard = defaultClipboard()

	w, h := screen.Size()
	doc.SetSize(w, renderui.DocumentHeight(h))
	doc.SetSelection(host.Range{}, host.SourceSilent)
	doc.Focus()

	ctrl, err := findreplace.New(doc, cfg.Options,
		findreplace.WithLogger(log.Named("find")),
		findreplace.WithClock(clock),
		findreplace.WithDispatch(app.dispatch),
	)
	if err != nil {
		return nil, err
	}
	app.ctrl = ctrl
	app.panel = panel.New(ctrl,
		panel.WithQueryDelay(cfg.Options.QueryDelay.Duration),
		panel.WithClock(clock),
		panel.WithDispatch(app.dispatch),
		panel.WithLogger(log.Named("panel")),
		panel.WithClipboard(func() (string, error) { return app.readClipboard() }),
	)
	app.panel.Resize(w, h)
	ctrl.SetView(app.panel)
	return app, nil
}

// dispatch queues fn to run on the event loop. Timers and watchers call it
// from their own goroutines. Once the loop has stopped fn is dropped.
func (app *Application) dispatch(fn func()) {
	app.stopMu.Lock()
	defer app.stopMu.Unlock()
	if app.stopped {
		return
	}
	select {
	case app.dispatchCh <- fn:
		return
	default:
	}
	app.sends.Add(1)
	go func() {
		defer app.sends.Done()
		select {
		case app.dispatchCh <- fn:
		case <-app.done:
		}
	}()
}

func (app *Application) startWatchers() {
	opts := []config.WatchOption{
		config.WithWatchDispatch(app.dispatch),
		config.WithWatchErrors(func(err error) {
			app.logger.Warn("watch failed", zap.Error(err))
		}),
	}
	if app.path != "" {
		w, err := config.NewWatcher(app.path, app.reloadFromDisk, opts...)
		if err != nil {
			app.logger.Warn("cannot watch document", zap.String("path", app.path), zap.Error(err))
		} else {
			app.watchers = append(app.watchers, w)
		}
	}
	if app.configPath != "" {
		w, err := config.Watch(app.configPath, app.applyOptions, opts...)
		if err != nil {
			app.logger.Warn("cannot watch config", zap.String("path", app.configPath), zap.Error(err))
		} else {
			app.watchers = append(app.watchers, w)
		}
	}
}

// Run processes terminal events until the user quits.
func (app *Application) Run() {
	defer app.screen.Fini()
	defer app.stop()

	app.render()
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			select {
			case eventChan <- ev:
			case <-app.done:
				return
			}
		}
	}()

	for !app.shouldQuit {
		if renderPending {
			app.render()
			renderPending = false
		}

		select {
		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			if app.handleEvent(ev) {
				renderPending = true
			}
		case fn := <-app.dispatchCh:
			fn()
			renderPending = true
		}

		if app.processDispatched() {
			renderPending = true
		}
	}
}

func (app *Application) processDispatched() bool {
	ran := false
	for {
		select {
		case fn := <-app.dispatchCh:
			fn()
			ran = true
		default:
			return ran
		}
	}
}

func (app *Application) render() {
	app.syncFocus()
	state := app.ctrl.State()
	opts := app.ctrl.Options()
	app.renderer.Render(renderui.Frame{
		Doc:        app.doc,
		Highlights: app.ctrl,
		Panel:      app.panel,
		FileName:   app.path,
		Dirty:      app.Dirty(),
		Message:    app.message,
		ShowHelp:   app.showHelp,
		Find: renderui.FindStatus{
			Open:       state.Open,
			Mode:       state.Mode.String(),
			Query:      state.Query,
			Counter:    state.Counter(),
			FindKey:    opts.FindKey,
			ReplaceKey: opts.ReplaceKey,
		},
	})
}

// syncFocus gives the editor focus whenever the panel does not hold it.
func (app *Application) syncFocus() {
	if app.panel.Focused() {
		app.doc.Blur()
		return
	}
	app.doc.Focus()
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.handleKey(ev)
	case *tcell.EventResize:
		app.resize()
	case *tcell.EventMouse:
		app.handleMouse(ev)
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	default:
		return false
	}
	app.syncFocus()
	return true
}

func (app *Application) resize() {
	w, h := app.screen.Size()
	app.doc.SetSize(w, renderui.DocumentHeight(h))
	app.panel.Resize(w, h)
	app.ctrl.OnEditorResized()
	app.screen.Sync()
}

func (app *Application) handleKey(ev *tcell.EventKey) {
	if app.showHelp {
		app.showHelp = false
		return
	}
	if ev.Key() != tcell.KeyCtrlQ {
		app.quitArmed = false
	}
	app.message = ""

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		app.quit()
		return
	case tcell.KeyCtrlS:
		app.save()
		return
	case tcell.KeyF1:
		app.showHelp = true
		return
	}

	if app.ctrl.HandleKey(ev) {
		app.panel.SetFocused(true)
		return
	}
	if app.panel.HandleKey(ev) {
		return
	}
	if ev.Key() == tcell.KeyEsc && app.ctrl.IsOpen() {
		app.ctrl.Hide()
		return
	}
	app.handleEditorKey(ev)
}

func (app *Application) handleMouse(ev *tcell.EventMouse) {
	if app.showHelp {
		return
	}
	if app.panel.HandleMouse(ev) {
		app.dragging = false
		return
	}

	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		app.scrollBy(-wheelStep)
		return
	case buttons&tcell.WheelDown != 0:
		app.scrollBy(wheelStep)
		return
	case buttons&tcell.Button1 == 0:
		app.dragging = false
		return
	}

	x, y := ev.Position()
	_, h := app.screen.Size()
	if y >= renderui.DocumentHeight(h) {
		return
	}
	offset := app.doc.Layout().OffsetAt(x, y+app.doc.Viewport().ScrollTop)
	if app.dragging {
		app.selectTo(offset)
		return
	}
	app.dragging = true
	app.moveCaret(offset, ev.Modifiers()&tcell.ModShift != 0)
}

func (app *Application) scrollBy(rows int) {
	lineHeight := app.doc.Layout().LineHeight()
	app.doc.SetScrollTop(app.doc.Viewport().ScrollTop + rows*lineHeight)
}

// applyOptions installs reloaded configuration.
func (app *Application) applyOptions(opts config.Options) {
	if err := app.ctrl.SetOptions(opts); err != nil {
		app.message = "config: " + err.Error()
		app.logger.Warn("config rejected", zap.Error(err))
		return
	}
	app.panel.SetQueryDelay(opts.QueryDelay.Duration)
	app.message = "config reloaded"
	app.logger.Info("config reloaded", zap.String("path", app.configPath))
}

// reloadFromDisk picks up external writes unless the buffer has unsaved edits.
func (app *Application) reloadFromDisk() {
	data, err := os.ReadFile(app.path)
	if err != nil {
		app.logger.Warn("reload failed", zap.String("path", app.path), zap.Error(err))
		return
	}
	text, err := document.Decode(app.path, data)
	if err != nil {
		app.fail("reload", err)
		return
	}
	if app.Dirty() {
		if text != app.savedText {
			app.message = "file changed on disk"
		}
		return
	}
	if err := app.doc.Reload(text, host.SourceAPI); err != nil {
		app.message = err.Error()
		app.logger.Warn("reload failed", zap.String("path", app.path), zap.Error(err))
		return
	}
	app.savedText = app.doc.Text()
}
