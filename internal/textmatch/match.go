// Package textmatch locates literal, case-insensitive occurrences of a query
// inside a flattened plain-text view of a document.
//
// Offsets and lengths are measured in runes so they line up with the host
// editor's character offsets.
package textmatch

import (
	"sort"
	"unicode"
)

// Span is a contiguous run of characters in the searched text.
type Span struct {
	Offset int
	Length int
}

// End returns the offset one past the last character of the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Covers reports whether the range [offset, offset+length] lies inside the span.
// A zero-length caret sitting on either edge counts as inside.
func (s Span) Covers(offset, length int) bool {
	return offset >= s.Offset && offset+length <= s.End()
}

// Find returns every non-overlapping occurrence of needle in haystack, left to
// right. After a hit the scan resumes at hit+len(needle), so "aa" in "aaa"
// yields a single span at 0. The needle is matched literally; characters that
// would be special to a pattern engine match themselves.
func Find(haystack, needle string) []Span {
	if needle == "" || haystack == "" {
		return nil
	}
	hay := []rune(haystack)
	ndl := foldRunes([]rune(needle))
	n := len(ndl)
	if n > len(hay) {
		return nil
	}

	var spans []Span
	for i := 0; i+n <= len(hay); {
		if matchesAtFolded(hay, i, ndl) {
			spans = append(spans, Span{Offset: i, Length: n})
			i += n
			continue
		}
		i++
	}
	return spans
}

// FindAll searches several needles and merges the hits in ascending offset
// order. A hit overlapping an earlier one is dropped so the result keeps the
// non-overlapping guarantee of Find.
func FindAll(haystack string, needles ...string) []Span {
	if len(needles) == 1 {
		return Find(haystack, needles[0])
	}
	var merged []Span
	for _, needle := range needles {
		merged = append(merged, Find(haystack, needle)...)
	}
	if len(merged) == 0 {
		return nil
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Offset == merged[j].Offset {
			return merged[i].Length > merged[j].Length
		}
		return merged[i].Offset < merged[j].Offset
	})
	out := merged[:0]
	end := -1
	for _, sp := range merged {
		if sp.Offset < end {
			continue
		}
		out = append(out, sp)
		end = sp.End()
	}
	return out
}

// Count reports how many spans Find would return.
func Count(haystack, needle string) int {
	return len(Find(haystack, needle))
}

// IndexCovering returns the index of the first span that fully contains the
// given range, or -1.
func IndexCovering(spans []Span, offset, length int) int {
	if length < 0 {
		return -1
	}
	for i, sp := range spans {
		if sp.Covers(offset, length) {
			return i
		}
	}
	return -1
}

func matchesAtFolded(hay []rune, start int, needleFolded []rune) bool {
	for k, nr := range needleFolded {
		if foldRune(hay[start+k]) != nr {
			return false
		}
	}
	return true
}

func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = foldRune(r)
	}
	return out
}

// foldRune maps r to the smallest member of its simple case folding orbit,
// so K, k and the Kelvin sign all compare equal. One rune in, one rune out
// keeps offsets aligned with the searched text. ASCII letters take a shortcut:
// their orbit minimum is always the upper case letter.
func foldRune(r rune) rune {
	if r < 0x80 {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}
	lowest := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < lowest {
			lowest = f
		}
	}
	return lowest
}
