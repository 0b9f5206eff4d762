package render

import (
	"strings"
)

// buildFooterHelpText returns the contextual footer hint string with leading/trailing padding.
func buildFooterHelpText(frame Frame) string {
	parts := buildFooterHelpSegments(frame)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

// buildFooterHelpSegments assembles context-aware help hints for the footer.
func buildFooterHelpSegments(frame Frame) []string {
	if frame.Find.Open {
		return []string{
			"↵: next",
			"↑↓: prev/next",
			"Tab: field",
			"Esc: close",
		}
	}
	findKey, replaceKey := keyLabels(frame.Find)
	return []string{
		findKey + ": find",
		replaceKey + ": replace",
		"^S: save",
		"^Z/^Y: undo/redo",
		"F1: help",
	}
}

func keyLabels(find FindStatus) (string, string) {
	findKey, replaceKey := find.FindKey, find.ReplaceKey
	if findKey == "" {
		findKey = "Ctrl+F"
	}
	if replaceKey == "" {
		replaceKey = "Ctrl+R"
	}
	return shortKey(findKey), shortKey(replaceKey)
}

func shortKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "Ctrl+"); ok {
		return "^" + rest
	}
	return name
}
