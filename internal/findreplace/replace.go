package findreplace

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kk-code-lab/rfind/internal/delta"
	"github.com/kk-code-lab/rfind/internal/host"
)

// replaceDelta swaps the characters at [offset, offset+length) for value,
// carrying over the formatting of the replaced text.
func (c *Controller) replaceDelta(offset, length int, value string) delta.Delta {
	format := c.editor.Format(offset, length)
	return *delta.New().Retain(offset).Delete(length).Insert(value, format)
}

func (c *Controller) freshMatches() {
	if c.research.Pending() {
		c.research.Flush()
	}
}

// ReplaceCurrent replaces the active match with value and searches again,
// keeping the active position so repeated calls walk through the document.
func (c *Controller) ReplaceCurrent(value string) error {
	c.freshMatches()
	if len(c.matches) == 0 {
		return nil
	}
	span := c.matches[c.active]
	change := c.replaceDelta(span.Offset, span.Length, value)
	if err := c.editor.ApplyDelta(change, host.SourceUser); err != nil {
		return c.replaceFailed("replace", err)
	}
	c.research.Cancel()
	c.search(c.query, c.active)
	c.render()
	return nil
}

// ReplaceAll replaces every match with value as a single undo step. Edits are
// composed from the last match backwards so earlier offsets stay valid.
func (c *Controller) ReplaceAll(value string) error {
	c.freshMatches()
	if len(c.matches) == 0 {
		return nil
	}
	var change delta.Delta
	for i := len(c.matches) - 1; i >= 0; i-- {
		span := c.matches[i]
		change = change.Compose(c.replaceDelta(span.Offset, span.Length, value))
	}
	count := len(c.matches)

	c.editor.CutoffHistory()
	if err := c.editor.ApplyDelta(change, host.SourceUser); err != nil {
		return c.replaceFailed("replace all", err)
	}
	c.editor.CutoffHistory()
	c.logger.Info("replaced all", zap.Int("count", count))

	c.OnQueryChange(c.query)
	return nil
}

func (c *Controller) replaceFailed(op string, err error) error {
	err = fmt.Errorf("%s %q: %w", op, c.query, err)
	c.logger.Error("replace failed", zap.Error(err))
	c.matches = nil
	c.active = 0
	c.overlay.SetMatches(nil, 0, false)
	c.render()
	return err
}
