package findreplace

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// HandleKey opens the panel for the find or replace shortcut. When the panel
// is already open the shortcut only switches mode. A non-empty selection in
// the focused editor becomes the query.
func (c *Controller) HandleKey(ev *tcell.EventKey) bool {
	if c.destroyed {
		return false
	}
	var mode Mode
	switch {
	case c.findKey.Matches(ev):
		mode = ModeFind
	case c.replaceKey.Matches(ev):
		mode = ModeReplace
	default:
		return false
	}

	selected := c.selectedQuery()
	c.mode = mode
	c.Show()
	if selected != "" && selected != c.query {
		c.OnQueryChange(selected)
	}
	return true
}

func (c *Controller) selectedQuery() string {
	if !c.editor.HasFocus() {
		return ""
	}
	r, ok := c.editor.Selection()
	if !ok || r.Length == 0 {
		return ""
	}
	return strings.NewReplacer("\n", "", "↵", "").Replace(c.editor.TextRange(r.Offset, r.Length))
}
