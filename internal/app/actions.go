package app

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/document"
	"github.com/kk-code-lab/rfind/internal/host"
)

var formatKeys = map[tcell.Key]string{
	tcell.KeyCtrlB: "bold",
	tcell.KeyCtrlT: "italic",
	tcell.KeyCtrlU: "underline",
}

func (app *Application) handleEditorKey(ev *tcell.EventKey) {
	extend := ev.Modifiers()&tcell.ModShift != 0
	sel, head := app.selection()

	switch ev.Key() {
	case tcell.KeyLeft:
		if sel.Length > 0 && !extend {
			app.moveCaret(sel.Offset, false)
			return
		}
		app.moveCaret(max(head-1, 0), extend)
	case tcell.KeyRight:
		if sel.Length > 0 && !extend {
			app.moveCaret(sel.End(), false)
			return
		}
		app.moveCaret(min(head+1, app.doc.Len()), extend)
	case tcell.KeyUp:
		app.moveCaret(app.verticalTarget(head, -1), extend)
	case tcell.KeyDown:
		app.moveCaret(app.verticalTarget(head, 1), extend)
	case tcell.KeyPgUp:
		app.moveCaret(app.verticalTarget(head, -app.pageRows()), extend)
	case tcell.KeyPgDn:
		app.moveCaret(app.verticalTarget(head, app.pageRows()), extend)
	case tcell.KeyHome:
		app.moveCaret(app.rowEdge(head, false), extend)
	case tcell.KeyEnd:
		app.moveCaret(app.rowEdge(head, true), extend)
	case tcell.KeyCtrlA:
		app.anchor = 0
		app.doc.SetSelection(host.Range{Length: app.doc.Len()}, host.SourceUser)
	case tcell.KeyEnter:
		app.replaceSelection("\n")
	case tcell.KeyTab:
		app.replaceSelection("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		app.deleteBackward()
	case tcell.KeyDelete:
		app.deleteForward()
	case tcell.KeyCtrlZ:
		app.historyStep(app.doc.Undo, "nothing to undo")
	case tcell.KeyCtrlY:
		app.historyStep(app.doc.Redo, "nothing to redo")
	case tcell.KeyCtrlC:
		app.copySelection(false)
	case tcell.KeyCtrlX:
		app.copySelection(true)
	case tcell.KeyCtrlV:
		app.paste()
	case tcell.KeyCtrlB, tcell.KeyCtrlT, tcell.KeyCtrlU:
		app.toggleFormat(formatKeys[ev.Key()])
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt != 0 {
			return
		}
		app.replaceSelection(string(ev.Rune()))
	}
}

// selection returns the current selection and the end that moves when it is
// extended. The other end is app.anchor.
func (app *Application) selection() (host.Range, int) {
	sel, ok := app.doc.Selection()
	if !ok {
		return host.Range{}, 0
	}
	switch app.anchor {
	case sel.Offset:
		return sel, sel.End()
	case sel.End():
		return sel, sel.Offset
	}
	app.anchor = sel.Offset
	return sel, sel.End()
}

func (app *Application) moveCaret(offset int, extend bool) {
	if extend {
		app.selectTo(offset)
		return
	}
	app.anchor = offset
	app.doc.SetSelection(host.Range{Offset: offset}, host.SourceUser)
}

func (app *Application) selectTo(offset int) {
	start, end := app.anchor, offset
	if end < start {
		start, end = end, start
	}
	app.doc.SetSelection(host.Range{Offset: start, Length: end - start}, host.SourceUser)
}

func (app *Application) verticalTarget(offset, rows int) int {
	layout := app.doc.Layout()
	col, row := layout.CaretCell(offset)
	target := row + rows
	switch {
	case target < 0:
		return 0
	case target >= layout.RowCount():
		return app.doc.Len()
	}
	return layout.OffsetAt(col, target*layout.LineHeight())
}

func (app *Application) rowEdge(offset int, end bool) int {
	layout := app.doc.Layout()
	_, row := layout.CaretCell(offset)
	y := row * layout.LineHeight()
	if end {
		return layout.OffsetAt(math.MaxInt32, y)
	}
	return layout.OffsetAt(0, y)
}

func (app *Application) pageRows() int {
	rows := app.doc.Viewport().Height / app.doc.Layout().LineHeight()
	return max(rows-1, 1)
}

// replaceSelection swaps the selected text for text, keeping the formatting
// of what it replaces, and leaves the caret after it.
func (app *Application) replaceSelection(text string) {
	sel, _ := app.selection()
	change := delta.New().
		Retain(sel.Offset).
		Delete(sel.Length).
		Insert(text, app.doc.Format(sel.Offset, sel.Length))
	if len(change.Ops) == 0 {
		return
	}
	if err := app.doc.ApplyDelta(*change, host.SourceUser); err != nil {
		app.fail("edit", err)
		return
	}
	app.moveCaret(sel.Offset+utf8.RuneCountInString(text), false)
}

func (app *Application) deleteBackward() {
	sel, head := app.selection()
	if sel.Length > 0 {
		app.replaceSelection("")
		return
	}
	if head == 0 {
		return
	}
	if err := app.doc.DeleteText(head-1, 1, host.SourceUser); err != nil {
		app.fail("delete", err)
		return
	}
	app.moveCaret(head-1, false)
}

func (app *Application) deleteForward() {
	sel, head := app.selection()
	if sel.Length > 0 {
		app.replaceSelection("")
		return
	}
	if head >= app.doc.Len() {
		return
	}
	if err := app.doc.DeleteText(head, 1, host.SourceUser); err != nil {
		app.fail("delete", err)
		return
	}
	app.moveCaret(head, false)
}

func (app *Application) historyStep(step func() (bool, error), empty string) {
	ok, err := step()
	switch {
	case err != nil:
		app.fail("history", err)
	case !ok:
		app.message = empty
	}
}

func (app *Application) copySelection(cut bool) {
	sel, _ := app.selection()
	if sel.Length == 0 {
		return
	}
	if err := app.writeClipboard(app.doc.TextRange(sel.Offset, sel.Length)); err != nil {
		app.fail("copy", err)
		return
	}
	if cut {
		app.replaceSelection("")
	}
}

func (app *Application) paste() {
	text, err := app.readClipboard()
	if err != nil {
		app.fail("paste", err)
		return
	}
	app.replaceSelection(document.NormalizeText(text))
}

func (app *Application) toggleFormat(name string) {
	sel, _ := app.selection()
	if sel.Length == 0 {
		app.message = "select text to format"
		return
	}
	value := "true"
	if app.doc.Format(sel.Offset, sel.Length)[name] != "" {
		value = ""
	}
	if err := app.doc.FormatText(sel.Offset, sel.Length, delta.Attributes{name: value}, host.SourceUser); err != nil {
		app.fail("format", err)
	}
}

func (app *Application) quit() {
	if app.Dirty() && !app.quitArmed {
		app.quitArmed = true
		app.message = "unsaved changes, press ^Q again to quit"
		return
	}
	app.shouldQuit = true
}

// save writes the buffer next to the target and renames it into place.
func (app *Application) save() {
	if app.path == "" {
		app.message = "no file name"
		return
	}
	if err := writeFileAtomic(app.path, app.doc); err != nil {
		app.fail("save", err)
		return
	}
	app.savedText = app.doc.Text()
	app.message = "saved " + filepath.Base(app.path)
	app.logger.Info("saved", zap.String("path", app.path), zap.Int("chars", app.doc.Len()))
}

func writeFileAtomic(path string, doc *document.Document) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = doc.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (app *Application) fail(op string, err error) {
	app.message = fmt.Sprintf("%s: %v", op, err)
	app.logger.Warn(op+" failed", zap.Error(err))
}
