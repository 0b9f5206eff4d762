package delta

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// ErrOutOfRange is returned when an edit reaches past the end of the text it is applied to.
var ErrOutOfRange = errors.New("delta: operation out of range")

// OpKind identifies the operation type.
type OpKind uint8

const (
	OpRetain OpKind = iota
	OpDelete
	OpInsert
)

func (k OpKind) String() string {
	switch k {
	case OpRetain:
		return "retain"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Op is a single delta operation. Exactly one of Insert, Delete or Retain is set.
type Op struct {
	Insert     string
	Delete     int
	Retain     int
	Attributes Attributes
}

// Kind reports which operation o carries.
func (o Op) Kind() OpKind {
	switch {
	case o.Insert != "":
		return OpInsert
	case o.Delete > 0:
		return OpDelete
	default:
		return OpRetain
	}
}

// Len returns the number of characters the op covers.
func (o Op) Len() int {
	switch o.Kind() {
	case OpInsert:
		return utf8.RuneCountInString(o.Insert)
	case OpDelete:
		return o.Delete
	default:
		return o.Retain
	}
}

func (o Op) String() string {
	var b strings.Builder
	switch o.Kind() {
	case OpInsert:
		fmt.Fprintf(&b, "insert(%q)", o.Insert)
	case OpDelete:
		fmt.Fprintf(&b, "delete(%d)", o.Delete)
	default:
		fmt.Fprintf(&b, "retain(%d)", o.Retain)
	}
	for _, k := range o.Attributes.Keys() {
		fmt.Fprintf(&b, " %s=%q", k, o.Attributes[k])
	}
	return b.String()
}

// Delta is an ordered list of operations.
type Delta struct {
	Ops []Op
}

// New returns an empty delta ready for chaining.
func New() *Delta {
	return &Delta{}
}

// Retain skips n characters, optionally re-formatting them.
func (d *Delta) Retain(n int, attrs ...Attributes) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Retain: n, Attributes: mergeArgs(attrs)})
}

// Delete removes n characters.
func (d *Delta) Delete(n int) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Delete: n})
}

// Insert adds text with the given formatting.
func (d *Delta) Insert(text string, attrs ...Attributes) *Delta {
	if text == "" {
		return d
	}
	return d.Push(Op{Insert: text, Attributes: mergeArgs(attrs)})
}

func mergeArgs(attrs []Attributes) Attributes {
	switch len(attrs) {
	case 0:
		return nil
	case 1:
		return attrs[0].Clone()
	}
	out := Attributes{}
	for _, a := range attrs {
		for k, v := range a {
			out[k] = v
		}
	}
	return out.Clone()
}

// Push appends op, merging it into the previous op when both have the same kind
// and formatting. An insert pushed right after a delete is placed before it so
// equivalent deltas share one canonical form.
func (d *Delta) Push(op Op) *Delta {
	op.Attributes = op.Attributes.Clone()
	idx := len(d.Ops)
	if idx > 0 {
		last := &d.Ops[idx-1]
		if op.Kind() == OpDelete && last.Kind() == OpDelete {
			last.Delete += op.Delete
			return d
		}
		if last.Kind() == OpDelete && op.Kind() == OpInsert {
			idx--
			if idx == 0 {
				d.Ops = append([]Op{op}, d.Ops...)
				return d
			}
			last = &d.Ops[idx-1]
		}
		if last.Attributes.Equal(op.Attributes) {
			switch {
			case op.Kind() == OpInsert && last.Kind() == OpInsert:
				last.Insert += op.Insert
				return d
			case op.Kind() == OpRetain && last.Kind() == OpRetain:
				last.Retain += op.Retain
				return d
			}
		}
	}
	if idx == len(d.Ops) {
		d.Ops = append(d.Ops, op)
		return d
	}
	d.Ops = append(d.Ops, Op{})
	copy(d.Ops[idx+1:], d.Ops[idx:])
	d.Ops[idx] = op
	return d
}

// Chop drops a trailing plain retain, which has no effect.
func (d *Delta) Chop() *Delta {
	if n := len(d.Ops); n > 0 {
		last := d.Ops[n-1]
		if last.Kind() == OpRetain && len(last.Attributes) == 0 {
			d.Ops = d.Ops[:n-1]
		}
	}
	return d
}

// Len returns the total length covered by all ops.
func (d Delta) Len() int {
	total := 0
	for _, op := range d.Ops {
		total += op.Len()
	}
	return total
}

// ChangeLength returns how much the edit grows (or shrinks) the text.
func (d Delta) ChangeLength() int {
	total := 0
	for _, op := range d.Ops {
		switch op.Kind() {
		case OpInsert:
			total += op.Len()
		case OpDelete:
			total -= op.Delete
		}
	}
	return total
}

// BaseLength returns the length of text the delta expects to be applied to,
// excluding any implicit trailing retain.
func (d Delta) BaseLength() int {
	total := 0
	for _, op := range d.Ops {
		if op.Kind() != OpInsert {
			total += op.Len()
		}
	}
	return total
}

// Text concatenates the inserted text. For a document delta this is the plain text.
func (d Delta) Text() string {
	var b strings.Builder
	for _, op := range d.Ops {
		b.WriteString(op.Insert)
	}
	return b.String()
}

// IsDocument reports whether d consists only of inserts.
func (d Delta) IsDocument() bool {
	for _, op := range d.Ops {
		if op.Kind() != OpInsert {
			return false
		}
	}
	return true
}

func (d Delta) String() string {
	parts := make([]string, len(d.Ops))
	for i, op := range d.Ops {
		parts[i] = op.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Slice returns the part of d covering [start, end). A negative end means to the end.
func (d Delta) Slice(start, end int) Delta {
	if end < 0 {
		end = math.MaxInt
	}
	out := New()
	it := newIterator(d.Ops)
	index := 0
	for index < end && it.hasNext() {
		var next Op
		if index < start {
			next = it.next(start - index)
		} else {
			next = it.next(end - index)
			out.Push(next)
		}
		index += next.Len()
	}
	return *out
}

// Compose returns a delta equivalent to applying d and then other.
func (d Delta) Compose(other Delta) Delta {
	out := New()
	a := newIterator(d.Ops)
	b := newIterator(other.Ops)
	for a.hasNext() || b.hasNext() {
		switch {
		case b.peekKind() == OpInsert:
			out.Push(b.next(math.MaxInt))
		case a.peekKind() == OpDelete:
			out.Push(a.next(math.MaxInt))
		default:
			length := min(a.peekLen(), b.peekLen())
			aOp := a.next(length)
			bOp := b.next(length)
			switch bOp.Kind() {
			case OpRetain:
				var op Op
				if aOp.Kind() == OpRetain {
					op.Retain = length
				} else {
					op.Insert = aOp.Insert
				}
				op.Attributes = composeAttributes(aOp.Attributes, bOp.Attributes, aOp.Kind() == OpRetain)
				out.Push(op)
			case OpDelete:
				if aOp.Kind() == OpRetain {
					out.Push(bOp)
				}
				// insert followed by delete cancels out
			}
		}
	}
	return *out.Chop()
}

// Invert returns the delta that undoes d when d has been applied to base.
// base must be a document delta.
func (d Delta) Invert(base Delta) Delta {
	out := New()
	baseIndex := 0
	for _, op := range d.Ops {
		switch {
		case op.Kind() == OpInsert:
			out.Delete(op.Len())
		case op.Kind() == OpRetain && len(op.Attributes) == 0:
			out.Retain(op.Retain)
			baseIndex += op.Retain
		default:
			length := op.Len()
			slice := base.Slice(baseIndex, baseIndex+length)
			for _, baseOp := range slice.Ops {
				if op.Kind() == OpDelete {
					out.Push(baseOp)
				} else {
					out.Retain(baseOp.Len(), invertAttributes(op.Attributes, baseOp.Attributes))
				}
			}
			baseIndex += length
		}
	}
	return *out.Chop()
}

// Validate checks that d can be applied to a text of the given length.
func (d Delta) Validate(length int) error {
	if base := d.BaseLength(); base > length {
		return fmt.Errorf("%w: needs %d characters, have %d", ErrOutOfRange, base, length)
	}
	return nil
}

type iterator struct {
	ops    []Op
	index  int
	offset int
}

func newIterator(ops []Op) *iterator {
	return &iterator{ops: ops}
}

func (it *iterator) hasNext() bool {
	return it.peekLen() < math.MaxInt
}

func (it *iterator) peekLen() int {
	if it.index >= len(it.ops) {
		return math.MaxInt
	}
	return it.ops[it.index].Len() - it.offset
}

func (it *iterator) peekKind() OpKind {
	if it.index >= len(it.ops) {
		return OpRetain
	}
	return it.ops[it.index].Kind()
}

// next consumes up to length characters of the current op.
func (it *iterator) next(length int) Op {
	if it.index >= len(it.ops) {
		return Op{Retain: math.MaxInt}
	}
	op := it.ops[it.index]
	offset := it.offset
	opLen := op.Len()
	if length >= opLen-offset {
		length = opLen - offset
		it.index++
		it.offset = 0
	} else {
		it.offset += length
	}
	switch op.Kind() {
	case OpDelete:
		return Op{Delete: length}
	case OpRetain:
		return Op{Retain: length, Attributes: op.Attributes}
	default:
		runes := []rune(op.Insert)
		return Op{Insert: string(runes[offset : offset+length]), Attributes: op.Attributes}
	}
}
