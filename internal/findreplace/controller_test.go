package findreplace

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/rfind/internal/config"
	"github.com/kk-code-lab/rfind/internal/debounce"
	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/host"
	"github.com/kk-code-lab/rfind/internal/overlay"
	"github.com/kk-code-lab/rfind/internal/textmatch"
)

type recordingView struct {
	states    []PanelState
	destroyed bool
}

func (v *recordingView) Update(s PanelState) { v.states = append(v.states, s) }

func (v *recordingView) Destroy() { v.destroyed = true }

func (v *recordingView) last() PanelState {
	if len(v.states) == 0 {
		return PanelState{}
	}
	return v.states[len(v.states)-1]
}

type fixture struct {
	doc   *document.Document
	ctrl  *Controller
	view  *recordingView
	clock *debounce.ManualClock
	now   *time.Time
}

func newFixture(t *testing.T, text string, mutate ...func(*config.Options)) *fixture {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	f := &fixture{clock: debounce.NewManualClock(), view: &recordingView{}, now: &now}
	f.doc = document.New(text, document.WithHistory(time.Hour, 100, func() time.Time { return *f.now }))
	opts := config.Default()
	for _, m := range mutate {
		m(&opts)
	}
	ctrl, err := New(f.doc, opts, WithClock(f.clock), WithView(f.view))
	require.NoError(t, err)
	f.ctrl = ctrl
	f.ctrl.Show()
	return f
}

func TestPanelStateCounter(t *testing.T) {
	assert.Equal(t, "0/0", PanelState{}.Counter())
	assert.Equal(t, "0/0", PanelState{Active: 3}.Counter())
	assert.Equal(t, "1/3", PanelState{Count: 3}.Counter())
	assert.Equal(t, "3/5", PanelState{Active: 2, Count: 5}.Counter())
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := config.Default()
	opts.ResultBackground = "nope"
	_, err := New(document.New(""), opts)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestQueryChangeSearchesAndRepaints(t *testing.T) {
	f := newFixture(t, "Cat cat CAT dog")

	f.ctrl.OnQueryChange("cat")

	assert.Equal(t, []textmatch.Span{{Offset: 0, Length: 3}, {Offset: 4, Length: 3}, {Offset: 8, Length: 3}}, f.ctrl.Matches())
	assert.Equal(t, 0, f.ctrl.Active())
	assert.Equal(t, "1/3", f.view.last().Counter())
	assert.Equal(t, "cat", f.view.last().Query)
	assert.False(t, f.ctrl.Overlay().IsClear())
	assert.Equal(t, overlay.Populated, f.ctrl.Overlay().State())

	f.ctrl.OnQueryChange("")
	assert.Empty(t, f.ctrl.Matches())
	assert.Equal(t, "0/0", f.view.last().Counter())
	assert.True(t, f.ctrl.Overlay().IsClear())
}

func TestStepWrapsCircularly(t *testing.T) {
	f := newFixture(t, "cat cat cat")
	f.ctrl.OnQueryChange("cat")

	f.ctrl.Step(-1)
	assert.Equal(t, 2, f.ctrl.Active())
	f.ctrl.Step(1)
	assert.Equal(t, 0, f.ctrl.Active())
	f.ctrl.Step(1)
	assert.Equal(t, 1, f.ctrl.Active())
	assert.Equal(t, overlay.ActiveOnly, f.ctrl.Overlay().State())

	sel, ok := f.doc.Selection()
	require.True(t, ok)
	assert.Equal(t, host.Range{Offset: 4, Length: 3}, sel)
	assert.Equal(t, "2/3", f.view.last().Counter())
}

func TestStepWithoutMatchesIsNoop(t *testing.T) {
	f := newFixture(t, "cat")
	f.ctrl.OnQueryChange("dog")
	renders := len(f.view.states)

	f.ctrl.Step(1)
	f.ctrl.Step(-1)

	assert.Equal(t, 0, f.ctrl.Active())
	assert.Len(t, f.view.states, renders)
	_, ok := f.doc.Selection()
	assert.False(t, ok)
}

func TestTextChangeClearsOverlayBeforeDebounceFires(t *testing.T) {
	f := newFixture(t, "cat cat")
	f.ctrl.OnQueryChange("cat")
	require.False(t, f.ctrl.Overlay().IsClear())

	require.NoError(t, f.doc.InsertText(0, "x", host.SourceUser))
	assert.True(t, f.ctrl.Overlay().IsClear())

	f.clock.Advance(999 * time.Millisecond)
	assert.True(t, f.ctrl.Overlay().IsClear())
	assert.Equal(t, 0, f.ctrl.Matches()[0].Offset, "stale until the re-search runs")

	f.clock.Advance(time.Millisecond)
	assert.False(t, f.ctrl.Overlay().IsClear())
	assert.Equal(t, []textmatch.Span{{Offset: 1, Length: 3}, {Offset: 5, Length: 3}}, f.ctrl.Matches())
}

func TestRepeatedEditsRestartDebounce(t *testing.T) {
	f := newFixture(t, "cat")
	f.ctrl.OnQueryChange("cat")

	require.NoError(t, f.doc.InsertText(3, " cat", host.SourceUser))
	f.clock.Advance(600 * time.Millisecond)
	require.NoError(t, f.doc.InsertText(7, " cat", host.SourceUser))
	f.clock.Advance(600 * time.Millisecond)
	assert.Len(t, f.ctrl.Matches(), 1)
	assert.True(t, f.ctrl.Overlay().IsClear())

	f.clock.Advance(400 * time.Millisecond)
	assert.Len(t, f.ctrl.Matches(), 3)
	assert.Equal(t, 0, f.ctrl.Active())
}

func TestSelectionInsideMatchActivatesIt(t *testing.T) {
	f := newFixture(t, "cat cat cat cat cat")
	f.ctrl.OnQueryChange("cat")

	f.doc.SetSelection(host.Range{Offset: 8, Length: 3}, host.SourceUser)

	assert.Equal(t, 2, f.ctrl.Active())
	assert.Equal(t, "3/5", f.view.last().Counter())
	assert.Equal(t, overlay.ActiveOnly, f.ctrl.Overlay().State())

	f.doc.SetSelection(host.Range{Offset: 13, Length: 0}, host.SourceUser)
	assert.Equal(t, 3, f.ctrl.Active(), "caret inside a match")

	f.doc.SetSelection(host.Range{Offset: 2, Length: 4}, host.SourceUser)
	assert.Equal(t, 3, f.ctrl.Active(), "selection spanning two matches changes nothing")
}

func TestSelectionIgnoredWhileMatchesAreStale(t *testing.T) {
	f := newFixture(t, "cat cat")
	f.ctrl.OnQueryChange("cat")
	require.NoError(t, f.doc.InsertText(0, "x", host.SourceUser))

	f.doc.SetSelection(host.Range{Offset: 5, Length: 3}, host.SourceUser)

	assert.Equal(t, 0, f.ctrl.Active())
	assert.True(t, f.ctrl.Overlay().IsClear())
}

func TestReplaceAllIsOneUndoStep(t *testing.T) {
	f := newFixture(t, "cat and cat")
	require.NoError(t, f.doc.InsertText(11, "!", host.SourceUser))
	f.ctrl.OnQueryChange("cat")

	require.NoError(t, f.ctrl.ReplaceAll("dog"))

	assert.Equal(t, "dog and dog!", f.doc.Text())
	assert.Empty(t, f.ctrl.Matches())
	assert.Equal(t, "0/0", f.view.last().Counter())
	assert.False(t, f.ctrl.research.Pending(), "re-search already ran")

	ok, err := f.doc.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cat and cat!", f.doc.Text())

	ok, err = f.doc.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cat and cat", f.doc.Text())
}

func TestReplaceAllPreservesFormatting(t *testing.T) {
	f := newFixture(t, "cat and cat")
	require.NoError(t, f.doc.FormatText(0, 3, delta.Attributes{"bold": "true"}, host.SourceUser))
	f.ctrl.OnQueryChange("cat")

	require.NoError(t, f.ctrl.ReplaceAll("tiger"))

	assert.Equal(t, "tiger and tiger", f.doc.Text())
	assert.Equal(t, delta.Attributes{"bold": "true"}, f.doc.Format(0, 5))
	assert.Empty(t, f.doc.Format(10, 5))
}

func TestReplaceAllValueContainingQuery(t *testing.T) {
	f := newFixture(t, "a-a")
	f.ctrl.OnQueryChange("a")

	require.NoError(t, f.ctrl.ReplaceAll("aa"))

	assert.Equal(t, "aa-aa", f.doc.Text())
	assert.Len(t, f.ctrl.Matches(), 4)
}

func TestReplaceCurrentKeepsPosition(t *testing.T) {
	f := newFixture(t, "cat cat cat")
	f.ctrl.OnQueryChange("cat")
	f.ctrl.Step(1)

	require.NoError(t, f.ctrl.ReplaceCurrent("dog"))
	assert.Equal(t, "cat dog cat", f.doc.Text())
	assert.Len(t, f.ctrl.Matches(), 2)
	assert.Equal(t, 1, f.ctrl.Active())

	require.NoError(t, f.ctrl.ReplaceCurrent("dog"))
	assert.Equal(t, "cat dog dog", f.doc.Text())
	assert.Equal(t, 0, f.ctrl.Active())
	assert.Equal(t, "1/1", f.view.last().Counter())
}

func TestReplaceWithNoMatchesIsNoop(t *testing.T) {
	f := newFixture(t, "cat")
	require.NoError(t, f.ctrl.ReplaceAll("dog"))
	require.NoError(t, f.ctrl.ReplaceCurrent("dog"))
	assert.Equal(t, "cat", f.doc.Text())
}

var errRejected = errors.New("rejected")

type rejectingEditor struct {
	*document.Document
}

func (rejectingEditor) ApplyDelta(delta.Delta, host.Source) error {
	return errRejected
}

func TestReplaceErrorIsWrappedAndClearsOverlay(t *testing.T) {
	doc := document.New("cat cat")
	view := &recordingView{}
	ctrl, err := New(rejectingEditor{doc}, config.Default(), WithView(view))
	require.NoError(t, err)
	ctrl.Show()
	ctrl.OnQueryChange("cat")

	err = ctrl.ReplaceAll("dog")
	require.Error(t, err)
	assert.ErrorIs(t, err, errRejected)
	assert.Contains(t, err.Error(), `"cat"`)
	assert.True(t, ctrl.Overlay().IsClear())
	assert.Equal(t, "0/0", view.last().Counter())
	assert.Equal(t, "cat cat", doc.Text())
}

func TestShortcutsOpenAndSwitchMode(t *testing.T) {
	doc := document.New("cat")
	view := &recordingView{}
	ctrl, err := New(doc, config.Default(), WithView(view))
	require.NoError(t, err)

	assert.False(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone)))
	assert.False(t, ctrl.IsOpen())

	require.True(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))
	assert.True(t, ctrl.IsOpen())
	assert.Equal(t, ModeFind, ctrl.Mode())

	require.True(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl)))
	assert.Equal(t, ModeReplace, ctrl.Mode())
	assert.Equal(t, ModeReplace, view.last().Mode)
	text, sel := doc.Subscribers()
	assert.Equal(t, 1, text, "reopening does not subscribe twice")
	assert.Equal(t, 1, sel)
}

func TestConfiguredShortcut(t *testing.T) {
	f := newFixture(t, "cat", func(o *config.Options) { o.FindKey = "F3" })
	f.ctrl.Hide()

	assert.False(t, f.ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))
	assert.True(t, f.ctrl.HandleKey(tcell.NewEventKey(tcell.KeyF3, 0, tcell.ModNone)))
	assert.True(t, f.ctrl.IsOpen())
}

func TestSelectionBecomesQuery(t *testing.T) {
	doc := document.New("foo\nbar foo\nbar")
	ctrl, err := New(doc, config.Default())
	require.NoError(t, err)

	doc.Focus()
	doc.SetSelection(host.Range{Offset: 0, Length: 7}, host.SourceUser)
	require.True(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))

	assert.Equal(t, "foobar", ctrl.Query())
	assert.Empty(t, ctrl.Matches())

	doc.SetSelection(host.Range{Offset: 4, Length: 3}, host.SourceUser)
	require.True(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))
	assert.Equal(t, "bar", ctrl.Query())
	assert.Len(t, ctrl.Matches(), 2)
}

func TestSelectionIgnoredWithoutFocus(t *testing.T) {
	doc := document.New("foo foo")
	ctrl, err := New(doc, config.Default())
	require.NoError(t, err)

	doc.SetSelection(host.Range{Offset: 0, Length: 3}, host.SourceUser)
	require.True(t, ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))
	assert.Equal(t, "", ctrl.Query())
}

func TestHideResetsAndUnsubscribes(t *testing.T) {
	f := newFixture(t, "cat cat")
	f.ctrl.OnQueryChange("cat")
	require.NoError(t, f.doc.InsertText(0, "x", host.SourceUser))

	f.ctrl.Hide()

	assert.False(t, f.ctrl.IsOpen())
	assert.Equal(t, "", f.ctrl.Query())
	assert.Empty(t, f.ctrl.Matches())
	assert.True(t, f.ctrl.Overlay().IsClear())
	assert.False(t, f.view.last().Open)
	text, sel := f.doc.Subscribers()
	assert.Zero(t, text)
	assert.Zero(t, sel)

	f.clock.Advance(2 * time.Second)
	assert.Empty(t, f.ctrl.Matches(), "pending re-search was cancelled")
}

func TestDestroyDetaches(t *testing.T) {
	f := newFixture(t, "cat")
	f.ctrl.OnQueryChange("cat")

	f.ctrl.Destroy()

	assert.True(t, f.view.destroyed)
	assert.Empty(t, f.ctrl.Overlay().Segments())
	assert.False(t, f.ctrl.HandleKey(tcell.NewEventKey(tcell.KeyCtrlF, 0, tcell.ModCtrl)))
	f.ctrl.Show()
	assert.False(t, f.ctrl.IsOpen())
}

func TestResizeRecreatesSegments(t *testing.T) {
	f := newFixture(t, "ab cat ab cat", func(o *config.Options) { o.SegmentHeight = 2 })
	f.ctrl.OnQueryChange("cat")
	require.Len(t, f.ctrl.Overlay().Segments(), 1)

	f.doc.SetSize(3, 10)
	f.ctrl.OnEditorResized()

	segments := f.ctrl.Overlay().Segments()
	_, height := f.doc.ContentSize()
	assert.Len(t, segments, (height+1)/2)
	color, ok := f.ctrl.HighlightAt(0, 1)
	require.True(t, ok)
	_, active, _ := config.Default().Colors()
	assert.Equal(t, active, color)
}

func TestDispatchRoutesDebouncedSearch(t *testing.T) {
	clock := debounce.NewManualClock()
	var queued []func()
	doc := document.New("cat")
	ctrl, err := New(doc, config.Default(), WithClock(clock), WithDispatch(func(fn func()) { queued = append(queued, fn) }))
	require.NoError(t, err)
	ctrl.Show()
	ctrl.OnQueryChange("cat")

	require.NoError(t, doc.InsertText(0, "cat ", host.SourceUser))
	clock.Advance(time.Second)
	require.Len(t, queued, 1)
	assert.Len(t, ctrl.Matches(), 1)

	queued[0]()
	assert.Len(t, ctrl.Matches(), 2)
}

func TestSetOptionsRepaintsWithNewColors(t *testing.T) {
	f := newFixture(t, "cat")
	f.ctrl.OnQueryChange("cat")

	opts := config.Default()
	opts.ActiveResultBackground = "#000000"
	require.NoError(t, f.ctrl.SetOptions(opts))

	color, ok := f.ctrl.HighlightAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), color)

	opts.FindKey = "bad+key+x"
	assert.Error(t, f.ctrl.SetOptions(opts))
}
