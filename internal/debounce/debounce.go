// Package debounce delays an action until a quiet period follows the events
// that trigger it.
package debounce

import (
	"sync"
	"time"
)

// Dispatch runs a fired callback. Event-loop owners use it to move the
// callback onto their own goroutine.
type Dispatch func(func())

// Debouncer groups rapid successive calls into a single callback that runs
// once no new call has arrived for the configured delay.
//
// All methods are safe for concurrent use. Stale timers are detected with a
// sequence number, so a callback never runs for a call that was superseded or
// cancelled.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	clock    Clock
	dispatch Dispatch
	timer    Timer
	pending  bool
	seq      uint64
	callback func()
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(d *Debouncer) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithDispatch routes the fired callback through fn instead of calling it on
// the timer goroutine.
func WithDispatch(fn Dispatch) Option {
	return func(d *Debouncer) {
		d.dispatch = fn
	}
}

// New creates a debouncer that calls callback after delay of quiet.
func New(delay time.Duration, callback func(), opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:    delay,
		clock:    RealClock,
		callback: callback,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period used by subsequent calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Call (re)starts the quiet period. A non-positive delay runs the callback
// immediately.
func (d *Debouncer) Call() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	if d.delay <= 0 {
		d.pending = false
		d.mu.Unlock()
		d.run()
		return
	}
	d.pending = true
	current := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		if d.dispatch != nil {
			d.dispatch(func() { d.fire(current) })
			return
		}
		d.fire(current)
	})
	d.mu.Unlock()
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if !d.pending || d.seq != seq {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()
	d.run()
}

func (d *Debouncer) run() {
	if d.callback != nil {
		d.callback()
	}
}

// Flush runs a pending callback now and cancels its timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
	d.mu.Unlock()
	d.run()
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
