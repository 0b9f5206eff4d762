package render

import (
	"fmt"
	"path/filepath"
	"strings"
)

func formatStatusLeft(frame Frame) string {
	name := frame.FileName
	if name == "" {
		name = "[scratch]"
	} else {
		name = filepath.Base(name)
	}
	parts := []string{" " + name}
	if frame.Dirty {
		parts[0] += " [+]"
	}
	if frame.Doc != nil {
		if sel, ok := frame.Doc.Selection(); ok {
			parts = append(parts, formatPosition(frame, sel.Offset))
		}
	}
	if frame.Find.Open {
		parts = append(parts, formatFindStatus(frame.Find))
	}
	return strings.Join(parts, " · ")
}

func formatPosition(frame Frame, offset int) string {
	layout := frame.Doc.Layout()
	col, row := layout.CaretCell(offset)
	return fmt.Sprintf("%d:%d", row+1, col+1)
}

func formatFindStatus(find FindStatus) string {
	mode := find.Mode
	if mode == "" {
		mode = "find"
	}
	if find.Query == "" {
		return mode
	}
	return fmt.Sprintf("%s %q %s", mode, find.Query, find.Counter)
}
