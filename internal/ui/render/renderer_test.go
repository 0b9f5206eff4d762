package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/host"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

type spanHighlighter struct {
	y, x0, x1 int
	color     tcell.Color
}

func (s spanHighlighter) HighlightAt(x, y int) (tcell.Color, bool) {
	if y == s.y && x >= s.x0 && x < s.x1 {
		return s.color, true
	}
	return tcell.ColorDefault, false
}

type recordingDrawer struct {
	calls int
}

func (d *recordingDrawer) Draw(screen tcell.Screen, theme ColorTheme) {
	d.calls++
	screen.SetContent(0, 0, '#', nil, tcell.StyleDefault.Background(theme.PanelBg))
}

func rowText(screen tcell.SimulationScreen, y, w int) string {
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(mainc)
	}
	return b.String()
}

func TestRenderDrawsDocumentAndHighlights(t *testing.T) {
	screen := newTestScreen(t, 20, 4)
	doc := document.New("cat dog\nbird")
	doc.SetSize(20, DocumentHeight(4))

	r := NewRenderer(screen)
	r.Render(Frame{
		Doc:        doc,
		Highlights: spanHighlighter{y: 0, x0: 4, x1: 7, color: tcell.ColorYellow},
		FileName:   "/tmp/notes.txt",
	})

	if got := rowText(screen, 0, 7); got != "cat dog" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowText(screen, 1, 4); got != "bird" {
		t.Fatalf("row 1 = %q", got)
	}
	_, _, style, _ := screen.GetContent(4, 0)
	if _, bg, _ := style.Decompose(); bg != tcell.ColorYellow {
		t.Fatalf("expected highlighted background, got %v", bg)
	}
	_, _, style, _ = screen.GetContent(0, 0)
	if _, bg, _ := style.Decompose(); bg == tcell.ColorYellow {
		t.Fatalf("cell outside the match should not be highlighted")
	}
	if status := rowText(screen, 3, 20); !strings.Contains(status, "notes.txt") {
		t.Fatalf("status line %q missing file name", status)
	}
}

func TestRenderSelectionAndFormatting(t *testing.T) {
	screen := newTestScreen(t, 20, 3)
	doc := document.New("hello world")
	if err := doc.FormatText(0, 5, delta.Attributes{"bold": "true"}, host.SourceUser); err != nil {
		t.Fatalf("format: %v", err)
	}
	doc.SetSelection(host.Range{Offset: 6, Length: 5}, host.SourceUser)

	r := NewRenderer(screen)
	r.Render(Frame{Doc: doc})

	_, _, style, _ := screen.GetContent(0, 0)
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrBold == 0 {
		t.Fatalf("expected bold formatting on first word")
	}
	_, _, style, _ = screen.GetContent(6, 0)
	if _, bg, _ := style.Decompose(); bg != r.Theme().SelectionBg {
		t.Fatalf("expected selection background, got %v", bg)
	}
}

func TestRenderHighlightsBlankRowsOfTallLines(t *testing.T) {
	screen := newTestScreen(t, 10, 5)
	doc := document.New("cat", document.WithLineHeight(2))
	doc.SetSize(10, DocumentHeight(5))

	r := NewRenderer(screen)
	r.Render(Frame{Doc: doc, Highlights: spanHighlighter{y: 1, x0: 0, x1: 3, color: tcell.ColorBlue}})

	_, _, style, _ := screen.GetContent(1, 1)
	if _, bg, _ := style.Decompose(); bg != tcell.ColorBlue {
		t.Fatalf("expected highlight on the second cell row of the line, got %v", bg)
	}
}

func TestRenderDrawsPanelLast(t *testing.T) {
	screen := newTestScreen(t, 10, 3)
	drawer := &recordingDrawer{}

	NewRenderer(screen).Render(Frame{Doc: document.New("xyz"), Panel: drawer})

	if drawer.calls != 1 {
		t.Fatalf("expected panel to be drawn once, got %d", drawer.calls)
	}
	if mainc, _, _, _ := screen.GetContent(0, 0); mainc != '#' {
		t.Fatalf("panel should cover the document, got %q", mainc)
	}
}

func TestRenderShowsCaretWhenFocused(t *testing.T) {
	screen := newTestScreen(t, 10, 3)
	doc := document.New("ab\ncd")
	doc.Focus()
	doc.SetSelection(host.Range{Offset: 4}, host.SourceUser)

	NewRenderer(screen).Render(Frame{Doc: doc})

	x, y, visible := screen.GetCursor()
	if !visible || x != 1 || y != 1 {
		t.Fatalf("cursor = (%d,%d,%v), want (1,1,true)", x, y, visible)
	}
}

func TestDrawTextClipsWideRunes(t *testing.T) {
	screen := newTestScreen(t, 10, 1)

	end := DrawText(screen, 0, 0, 5, "世界世界", tcell.StyleDefault)

	if end != 4 {
		t.Fatalf("expected to stop after two wide runes, got %d", end)
	}
	if mainc, _, _, _ := screen.GetContent(2, 0); mainc != '界' {
		t.Fatalf("unexpected rune %q", mainc)
	}
}

func TestDrawTextSanitisesControls(t *testing.T) {
	screen := newTestScreen(t, 10, 1)

	DrawText(screen, 0, 0, 10, "a\x1bb", tcell.StyleDefault)

	if got := rowText(screen, 0, 3); got != "a?b" {
		t.Fatalf("got %q", got)
	}
}

func TestDrawTextExpandsTabs(t *testing.T) {
	screen := newTestScreen(t, 10, 1)

	end := DrawText(screen, 0, 0, 10, "a\tb", tcell.StyleDefault)

	if end != 5 {
		t.Fatalf("end = %d, want 5", end)
	}
	if got := rowText(screen, 0, 5); got != "a   b" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderMarksFormattingRunes(t *testing.T) {
	screen := newTestScreen(t, 10, 3)
	doc := document.New("a\u200bb\x01")

	NewRenderer(screen).Render(Frame{Doc: doc})

	if got := rowText(screen, 0, 4); got != "a·b?" {
		t.Fatalf("got %q", got)
	}
	_, _, style, _ := screen.GetContent(1, 0)
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrDim == 0 {
		t.Fatalf("expected dim marker")
	}
}

func TestStatusLeftIncludesFindState(t *testing.T) {
	doc := document.New("one\ntwo")
	doc.SetSelection(host.Range{Offset: 5}, host.SourceUser)

	got := formatStatusLeft(Frame{
		Doc:      doc,
		FileName: "dir/file.md",
		Dirty:    true,
		Find:     FindStatus{Open: true, Mode: "replace", Query: "tw", Counter: "1/1"},
	})

	for _, want := range []string{"file.md [+]", "2:2", `replace "tw" 1/1`} {
		if !strings.Contains(got, want) {
			t.Fatalf("status %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "dir/") {
		t.Fatalf("status should show the base name only: %q", got)
	}
}

func TestFooterHelpFollowsConfiguredKeys(t *testing.T) {
	text := buildFooterHelpText(Frame{Find: FindStatus{FindKey: "F3", ReplaceKey: "Ctrl+R"}})
	if !strings.Contains(text, "F3: find") || !strings.Contains(text, "^R: replace") {
		t.Fatalf("unexpected footer %q", text)
	}

	open := buildFooterHelpSegments(Frame{Find: FindStatus{Open: true}})
	if len(open) == 0 || open[len(open)-1] != "Esc: close" {
		t.Fatalf("unexpected open-panel hints %v", open)
	}
}

func TestBuildHelpOverlayLinesIncludesSections(t *testing.T) {
	lines := buildHelpOverlayLines(Frame{})

	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Editing", "Find & Replace", "Exit", "^F", "^R", "Paste clipboard"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected help to contain %q, got %v", want, lines)
		}
	}
}
