package config

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// KeyBinding is a parsed shortcut such as "Ctrl+F", "Alt+r" or "F3".
type KeyBinding struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

var namedKeys = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		if strings.HasPrefix(name, "Ctrl-") {
			continue
		}
		m[strings.ToLower(name)] = k
	}
	return m
}()

// ParseKey parses a shortcut. Modifiers are joined with "+" or "-".
func ParseKey(s string) (KeyBinding, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool { return r == '+' || r == '-' })
	if len(fields) == 0 {
		return KeyBinding{}, fmt.Errorf("%w: empty key binding", ErrInvalid)
	}
	var mod tcell.ModMask
	for _, m := range fields[:len(fields)-1] {
		switch strings.ToLower(m) {
		case "ctrl", "control":
			mod |= tcell.ModCtrl
		case "alt", "meta":
			mod |= tcell.ModAlt
		case "shift":
			mod |= tcell.ModShift
		default:
			return KeyBinding{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalid, m, s)
		}
	}

	last := fields[len(fields)-1]
	if k, ok := namedKeys[strings.ToLower(last)]; ok {
		return KeyBinding{Key: k, Mod: mod}, nil
	}
	r, size := utf8.DecodeRuneInString(last)
	if size != len(last) {
		return KeyBinding{}, fmt.Errorf("%w: unknown key %q in %q", ErrInvalid, last, s)
	}
	if mod&tcell.ModCtrl != 0 {
		r = unicode.ToUpper(r)
		if r < 'A' || r > 'Z' {
			return KeyBinding{}, fmt.Errorf("%w: ctrl binding needs a letter, got %q", ErrInvalid, s)
		}
		if r == 'H' || r == 'I' || r == 'M' {
			return KeyBinding{}, fmt.Errorf("%w: %q is indistinguishable from a terminal key", ErrInvalid, s)
		}
		return KeyBinding{Key: tcell.KeyCtrlA + tcell.Key(r-'A'), Mod: tcell.ModCtrl}, nil
	}
	return KeyBinding{Key: tcell.KeyRune, Rune: unicode.ToLower(r), Mod: mod}, nil
}

// Matches reports whether ev is this shortcut.
func (b KeyBinding) Matches(ev *tcell.EventKey) bool {
	if ev == nil {
		return false
	}
	if b.Key == tcell.KeyRune {
		return ev.Key() == tcell.KeyRune && unicode.ToLower(ev.Rune()) == b.Rune && ev.Modifiers()&b.Mod == b.Mod
	}
	if b.Key >= tcell.KeyCtrlA && b.Key <= tcell.KeyCtrlZ {
		return ev.Key() == b.Key
	}
	return ev.Key() == b.Key && ev.Modifiers()&b.Mod == b.Mod
}

func (b KeyBinding) String() string {
	var parts []string
	if b.Key >= tcell.KeyCtrlA && b.Key <= tcell.KeyCtrlZ {
		return "Ctrl+" + string(rune('A'+b.Key-tcell.KeyCtrlA))
	}
	if b.Mod&tcell.ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if b.Mod&tcell.ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if b.Mod&tcell.ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if b.Key == tcell.KeyRune {
		parts = append(parts, string(b.Rune))
	} else if name, ok := tcell.KeyNames[b.Key]; ok {
		parts = append(parts, name)
	}
	return strings.Join(parts, "+")
}
