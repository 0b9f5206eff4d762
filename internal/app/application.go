package app

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/findreplace"
	"github.com/kk-code-lab/rfind/internal/ui/panel"
	renderui "github.com/kk-code-lab/rfind/internal/ui/render"
)

// Config is what the command line hands to the application.
type Config struct {
	Path       string
	ConfigPath string
	Options    config.Options
	Logger     *zap.Logger
}

// Application represents the running editor.
type Application struct {
	screen   tcell.Screen
	doc      *document.Document
	ctrl     *findreplace.Controller
	panel    *panel.Panel
	renderer *renderui.Renderer
	logger   *zap.Logger

	path       string
	configPath string
	savedText  string
	message    string
	showHelp   bool
	quitArmed  bool
	shouldQuit bool

	anchor     int
	dragging   bool
	watchers   []io.Closer
	dispatchCh chan func()
	done       chan struct{}
	stopMu     sync.Mutex
	stopped    bool
	sends      sync.WaitGroup

	readClipboard  func() (string, error)
	writeClipboard func(string) error
}

// Close stops watchers and detaches the find controller. Callbacks arriving
// afterwards are dropped.
func (app *Application) Close() error {
	app.stop()
	var errs []error
	for _, w := range app.watchers {
		errs = append(errs, w.Close())
	}
	app.watchers = nil
	app.ctrl.Destroy()
	return errors.Join(errs...)
}

// stop releases every goroutine still waiting to hand work to the loop.
func (app *Application) stop() {
	app.stopMu.Lock()
	if !app.stopped {
		app.stopped = true
		close(app.done)
	}
	app.stopMu.Unlock()
	app.sends.Wait()
}

// Dirty reports whether the buffer differs from the file on disk.
func (app *Application) Dirty() bool {
	return app.doc.Text() != app.savedText
}

// Document returns the buffer being edited.
func (app *Application) Document() *document.Document {
	return app.doc
}

func loadDocument(path string) (*document.Document, string, error) {
	if path == "" {
		return document.New(""), "", nil
	}
	doc, err := document.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return document.New(""), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return doc, doc.Text(), nil
}

func defaultClipboard() (func() (string, error), func(string) error) {
	return clipboard.ReadAll, clipboard.WriteAll
}
