package panel

import (
	"strings"

	"github.com/kk-code-lab/rfind/internal/textutil"
)

// field is a single-line text input edited at its end.
type field struct {
	label string
	value string
}

func (f *field) insert(text string) bool {
	text = singleLine(text)
	if text == "" {
		return false
	}
	f.value += text
	return true
}

func (f *field) backspace() bool {
	if f.value == "" {
		return false
	}
	f.value = textutil.TrimLastGrapheme(f.value)
	return true
}

func (f *field) clear() bool {
	if f.value == "" {
		return false
	}
	f.value = ""
	return true
}

// visible returns the tail of the displayed value that fits in width cells,
// and the caret column within it. Formatting characters are shown as labels
// here only; the value itself keeps them so it still matches the document.
func (f *field) visible(width int) (string, int) {
	if width <= 0 {
		return "", 0
	}
	text := textutil.SanitizeTerminalText(f.value)
	for textutil.DisplayWidth(text) >= width && text != "" {
		_, rest, _ := cutFirstGrapheme(text)
		text = rest
	}
	return text, textutil.DisplayWidth(text)
}

var lineBreaks = strings.NewReplacer("\r\n", "", "\n", "", "\r", "")

func singleLine(text string) string {
	return lineBreaks.Replace(text)
}
