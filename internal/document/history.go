package document

import (
	"time"

	"github.com/kk-code-lab/rfind/internal/delta"
)

const (
	defaultHistoryDelay = time.Second
	defaultHistoryDepth = 100
)

type historyEntry struct {
	redo delta.Delta
	undo delta.Delta
}

// History records applied edits as undo steps. Edits that arrive within the
// merge delay of the previous one are folded into the same step until Cutoff
// is called.
type History struct {
	undo         []historyEntry
	redo         []historyEntry
	lastRecorded time.Time
	delay        time.Duration
	maxEntries   int
	now          func() time.Time
}

func newHistory(delay time.Duration, maxEntries int, now func() time.Time) *History {
	if maxEntries <= 0 {
		maxEntries = defaultHistoryDepth
	}
	if now == nil {
		now = time.Now
	}
	return &History{delay: delay, maxEntries: maxEntries, now: now}
}

func (h *History) record(change, undo delta.Delta) {
	if len(change.Ops) == 0 {
		return
	}
	h.redo = nil
	ts := h.now()
	if !h.lastRecorded.IsZero() && ts.Sub(h.lastRecorded) < h.delay && len(h.undo) > 0 {
		last := h.undo[len(h.undo)-1]
		h.undo = h.undo[:len(h.undo)-1]
		undo = undo.Compose(last.undo)
		change = last.redo.Compose(change)
	} else {
		h.lastRecorded = ts
	}
	h.undo = append(h.undo, historyEntry{redo: change, undo: undo})
	if len(h.undo) > h.maxEntries {
		h.undo = h.undo[len(h.undo)-h.maxEntries:]
	}
}

// Cutoff closes the current undo step.
func (h *History) Cutoff() {
	h.lastRecorded = time.Time{}
}

// UndoDepth reports how many steps can be undone.
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// RedoDepth reports how many steps can be redone.
func (h *History) RedoDepth() int {
	return len(h.redo)
}

// Clear drops all recorded steps.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.lastRecorded = time.Time{}
}
