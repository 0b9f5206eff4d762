package overlay

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/textmatch"
)

var testColors = Options{Default: tcell.ColorYellow, Active: tcell.ColorBlue}

func withCap(rows int) Options {
	o := testColors
	o.SegmentHeight = rows
	return o
}

func TestSegmentCountFollowsContentHeight(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		cap     int
		heights []int
	}{
		{"single", "xbc", 5, []int{1}},
		{"remainder", strings.Repeat("x\n", 12), 5, []int{5, 5, 3}},
		{"exact multiple", strings.Repeat("x\n", 9) + "x", 5, []int{5, 5}},
		{"default cap", strings.Repeat("x\n", 30), 0, []int{31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New(tt.text)
			r := New(doc, withCap(tt.cap))
			r.SetMatches(textmatch.Find(doc.Text(), "x"), 0, true)

			var heights []int
			for _, seg := range r.Segments() {
				heights = append(heights, seg.Height)
			}
			assert.Equal(t, tt.heights, heights)
		})
	}
}

type flatEditor struct {
	*document.Document
}

func (flatEditor) ContentSize() (int, int) { return 10, 0 }

func TestZeroHeightContentHasNoSegments(t *testing.T) {
	doc := document.New("cat")
	r := New(flatEditor{doc}, testColors)

	r.SetMatches(textmatch.Find(doc.Text(), "cat"), 0, true)

	assert.Empty(t, r.Segments())
	assert.True(t, r.IsClear())
	assert.Zero(t, r.Stats().Painted)
	_, ok := r.ColorAt(0, 0)
	assert.False(t, ok)
}

func TestStraddlingGlyphPaintsBothSegments(t *testing.T) {
	doc := document.New("a\nbcat", document.WithLineHeight(3))
	r := New(doc, withCap(4))
	spans := textmatch.Find(doc.Text(), "cat")
	require.Len(t, spans, 1)

	r.SetMatches(spans, 0, true)

	require.Len(t, r.Segments(), 2)
	for _, y := range []int{3, 4, 5} {
		color, ok := r.ColorAt(1, y)
		require.True(t, ok, "row %d", y)
		assert.Equal(t, tcell.ColorBlue, color)
	}
	_, ok := r.Segments()[0].At(1, 3)
	assert.True(t, ok)
	_, ok = r.Segments()[1].At(1, 0)
	assert.True(t, ok)
	_, ok = r.ColorAt(0, 3)
	assert.False(t, ok, "b is not part of the match")
	assert.Equal(t, Populated, r.State())
}

func TestClearIsGuardedByCleanFlag(t *testing.T) {
	doc := document.New(strings.Repeat("cat\n", 8))
	r := New(doc, withCap(3))
	r.SetMatches(textmatch.Find(doc.Text(), "cat"), 0, true)
	require.False(t, r.IsClear())
	segments := len(r.Segments())

	r.Clear()
	assert.True(t, r.IsClear())
	assert.Equal(t, segments, r.Stats().Clears)

	r.Clear()
	r.Clear()
	assert.Equal(t, segments, r.Stats().Clears)
	assert.Len(t, r.Segments(), segments, "clear keeps segments")
	_, ok := r.ColorAt(0, 0)
	assert.False(t, ok)
}

func TestActiveOnlyRecolorsChangedMatches(t *testing.T) {
	doc := document.New("cat cat cat")
	r := New(doc, testColors)
	spans := textmatch.Find(doc.Text(), "cat")
	r.SetMatches(spans, 0, true)
	painted := r.Stats().Painted
	require.Equal(t, 9, painted)

	r.SetMatches(spans, 1, false)

	assert.Equal(t, ActiveOnly, r.State())
	assert.Equal(t, painted+6, r.Stats().Painted)
	first, _ := r.ColorAt(0, 0)
	second, _ := r.ColorAt(4, 0)
	third, _ := r.ColorAt(8, 0)
	assert.Equal(t, tcell.ColorYellow, first)
	assert.Equal(t, tcell.ColorBlue, second)
	assert.Equal(t, tcell.ColorYellow, third)
	assert.Equal(t, tcell.ColorBlue, r.Matches()[1].Color)
}

func TestRecolorAfterClearRepaintsEverything(t *testing.T) {
	doc := document.New("cat cat")
	r := New(doc, testColors)
	spans := textmatch.Find(doc.Text(), "cat")
	r.SetMatches(spans, 0, true)
	r.Clear()

	r.SetMatches(spans, 1, false)

	assert.Equal(t, Populated, r.State())
	_, ok := r.ColorAt(0, 0)
	assert.True(t, ok)
}

func TestEmptyMatchesClearOverlay(t *testing.T) {
	doc := document.New("cat")
	r := New(doc, testColors)
	r.SetMatches(textmatch.Find(doc.Text(), "cat"), 0, true)

	r.SetMatches(nil, 0, false)

	assert.True(t, r.IsClear())
	assert.Equal(t, Empty, r.State())
	assert.Empty(t, r.Matches())
}

func TestResetDropsSegments(t *testing.T) {
	doc := document.New("cat")
	r := New(doc, testColors)
	r.SetMatches(textmatch.Find(doc.Text(), "cat"), 0, true)

	r.Reset()

	assert.Empty(t, r.Segments())
	assert.Equal(t, Empty, r.State())
	assert.True(t, r.IsClear())
}

func TestAutoScrollWhenEditorUnfocused(t *testing.T) {
	text := strings.Repeat("line\n", 50) + "needle\n" + strings.Repeat("line\n", 50)
	doc := document.New(text, document.WithSize(0, 9))
	r := New(doc, testColors)

	r.SetMatches(textmatch.Find(doc.Text(), "needle"), 0, true)

	assert.Equal(t, 47, doc.Viewport().ScrollTop)
	assert.Equal(t, 1, r.Stats().Scrolls)
}

func TestAutoScrollSkippedWhenFocusedOrVisible(t *testing.T) {
	text := strings.Repeat("line\n", 50) + "needle"
	doc := document.New(text, document.WithSize(0, 9))
	doc.Focus()
	r := New(doc, testColors)
	r.SetMatches(textmatch.Find(doc.Text(), "needle"), 0, true)
	assert.Equal(t, 0, doc.Viewport().ScrollTop)

	doc.Blur()
	r.SetMatches(textmatch.Find(doc.Text(), "line"), 2, true)
	assert.Equal(t, 0, doc.Viewport().ScrollTop, "row 2 is already visible")
}

func TestMissingBoundsSkipsGlyph(t *testing.T) {
	doc := document.New("abcd")
	r := New(doc, testColors)

	r.SetMatches([]textmatch.Span{{Offset: 2, Length: 5}}, 0, true)

	assert.Equal(t, 3, r.Stats().Skipped)
	assert.Equal(t, 2, r.Stats().Painted)
	_, ok := r.ColorAt(3, 0)
	assert.True(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "populated", Populated.String())
	assert.Equal(t, "active-only", ActiveOnly.String())
}
