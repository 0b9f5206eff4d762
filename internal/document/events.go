package document

import (
	"sort"

	"github.com/kk-code-lab/rfind/internal/host"
)

type subscribers[T any] struct {
	nextID int
	fns    map[int]func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	s.nextID++
	id := s.nextID
	s.fns[id] = fn
	return func() {
		delete(s.fns, id)
	}
}

func (s *subscribers[T]) emit(v T) {
	if len(s.fns) == 0 {
		return
	}
	ids := make([]int, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := s.fns[id]; ok {
			fn(v)
		}
	}
}

func (s *subscribers[T]) len() int {
	return len(s.fns)
}

// OnTextChange registers fn for text changes.
func (d *Document) OnTextChange(fn func(host.TextChange)) func() {
	return d.textSubs.add(fn)
}

// OnSelectionChange registers fn for selection changes.
func (d *Document) OnSelectionChange(fn func(host.SelectionChange)) func() {
	return d.selectionSubs.add(fn)
}

// Subscribers reports how many text and selection listeners are registered.
func (d *Document) Subscribers() (text, selection int) {
	return d.textSubs.len(), d.selectionSubs.len()
}
