package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kk-code-lab/rfind/internal/debounce"
)

const defaultWatchDelay = 100 * time.Millisecond

// Watcher reports writes to a single file. It watches the parent directory
// so editors that save by renaming a temp file are still seen.
type Watcher struct {
	fsw       *fsnotify.Watcher
	path      string
	onError   func(error)
	debouncer *debounce.Debouncer

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// WatchOption configures a Watcher.
type WatchOption func(*watchSettings)

type watchSettings struct {
	delay    time.Duration
	dispatch debounce.Dispatch
	onError  func(error)
}

// WithWatchDelay coalesces bursts of events into one callback after d.
func WithWatchDelay(d time.Duration) WatchOption {
	return func(s *watchSettings) { s.delay = d }
}

// WithWatchDispatch routes callbacks through fn, e.g. into a UI event loop.
func WithWatchDispatch(fn debounce.Dispatch) WatchOption {
	return func(s *watchSettings) { s.dispatch = fn }
}

// WithWatchErrors receives watcher errors.
func WithWatchErrors(fn func(error)) WatchOption {
	return func(s *watchSettings) { s.onError = fn }
}

// NewWatcher calls onChange after path is written, created or renamed into place.
func NewWatcher(path string, onChange func(), opts ...WatchOption) (*Watcher, error) {
	settings := watchSettings{delay: defaultWatchDelay, onError: func(error) {}}
	for _, opt := range opts {
		opt(&settings)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	debounceOpts := []debounce.Option{}
	if settings.dispatch != nil {
		debounceOpts = append(debounceOpts, debounce.WithDispatch(settings.dispatch))
	}
	w := &Watcher{
		fsw:       fsw,
		path:      abs,
		onError:   settings.onError,
		debouncer: debounce.New(settings.delay, onChange, debounceOpts...),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Call()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and drops any pending callback.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		w.debouncer.Cancel()
	})
	return err
}

// Watch reloads the options file whenever it changes. Files that fail to
// load are reported through the error option and otherwise ignored.
func Watch(path string, onChange func(Options), opts ...WatchOption) (*Watcher, error) {
	var settings watchSettings
	for _, opt := range opts {
		opt(&settings)
	}
	report := settings.onError
	if report == nil {
		report = func(error) {}
	}
	return NewWatcher(path, func() {
		loaded, err := Load(path)
		if err != nil {
			report(err)
			return
		}
		onChange(loaded)
	}, opts...)
}
