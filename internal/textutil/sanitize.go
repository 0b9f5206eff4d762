package textutil

import "strings"

// formatLabels names the invisible formatting characters that can reorder or
// hide text on a terminal.
var formatLabels = map[rune]string{
	0x00AD: "⟪SHY⟫",
	0x061C: "⟪ALM⟫",
	0x180E: "⟪MVS⟫",
	0x200B: "⟪ZWSP⟫",
	0x200C: "⟪ZWNJ⟫",
	0x200D: "⟪ZWJ⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x2028: "⟪LSEP⟫",
	0x2029: "⟪PSEP⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2060: "⟪WJ⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0x206A: "⟪ISS⟫",
	0x206B: "⟪ASS⟫",
	0x206C: "⟪IAFS⟫",
	0x206D: "⟪AAFS⟫",
	0x206E: "⟪NADS⟫",
	0x206F: "⟪NODS⟫",
	0xFEFF: "⟪BOM⟫",
}

// IsFormattingRune reports whether r is a bidi or zero-width formatting
// character.
func IsFormattingRune(r rune) bool {
	_, ok := formatLabels[r]
	return ok
}

// IsControl reports whether r is a C0 control or DEL.
func IsControl(r rune) bool {
	return (r >= 0 && r < 0x20) || r == 0x7f
}

// SanitizeTerminalText prepares text for display only. Line breaks and tabs
// become spaces, other controls become '?', and formatting characters are
// spelled out so they cannot reorder what is drawn. Search input is never
// passed through here: the labels would no longer match the document.
func SanitizeTerminalText(text string) string {
	clean := true
	for _, r := range text {
		if IsControl(r) || IsFormattingRune(r) {
			clean = false
			break
		}
	}
	if clean {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if label, ok := formatLabels[r]; ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case IsControl(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
