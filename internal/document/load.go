package document

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/host"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/unicode/norm"
)

// ErrNotText is returned when loaded content is not valid UTF-8.
var ErrNotText = errors.New("document: content is not valid UTF-8 text")

// NormalizeText converts CRLF line endings to LF and composes the text to NFC
// so that visually identical characters share one offset.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return norm.NFC.String(text)
}

// Load reads r into a new document.
func Load(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	text, err := Decode("", data)
	if err != nil {
		return nil, err
	}
	return New(text, opts...), nil
}

// WriteTo writes the plain text to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Text())
	return int64(n), err
}

// DiffDelta returns the minimal edit that turns oldText into newText.
func DiffDelta(oldText, newText string) delta.Delta {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes([]rune(oldText), []rune(newText), false)
	diffs = dmp.DiffCleanupEfficiency(diffs)
	out := delta.New()
	for _, diff := range diffs {
		n := utf8.RuneCountInString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			out.Retain(n)
		case diffmatchpatch.DiffDelete:
			out.Delete(n)
		case diffmatchpatch.DiffInsert:
			out.Insert(diff.Text)
		}
	}
	return *out.Chop()
}

// Reload replaces the content with text by applying only the changed parts,
// so formatting and the selection survive where the text did not change.
func (d *Document) Reload(text string, source host.Source) error {
	change := DiffDelta(d.Text(), NormalizeText(text))
	if len(change.Ops) == 0 {
		return nil
	}
	return d.ApplyDelta(change, source)
}
