package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor accepts "#rrggbb", "#rgb", "rgb(r, g, b)" or a color name known
// to tcell.
func ParseColor(s string) (tcell.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return 0, fmt.Errorf("%w: empty color", ErrInvalid)
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("%w: color %q", ErrInvalid, s)
		}
		return toTcell(c), nil
	case strings.HasPrefix(strings.ToLower(s), "rgb(") && strings.HasSuffix(s, ")"):
		c, err := parseRGB(s[4 : len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("%w: color %q: %v", ErrInvalid, s, err)
		}
		return toTcell(c), nil
	}
	if c := tcell.GetColor(strings.ToLower(s)); c != tcell.ColorDefault {
		return c, nil
	}
	return 0, fmt.Errorf("%w: color %q", ErrInvalid, s)
}

func parseRGB(args string) (colorful.Color, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return colorful.Color{}, fmt.Errorf("want 3 components, got %d", len(parts))
	}
	var rgb [3]float64
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return colorful.Color{}, err
		}
		if v < 0 || v > 255 {
			return colorful.Color{}, fmt.Errorf("component %d out of range", v)
		}
		rgb[i] = float64(v) / 255
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Contrast picks black or white text for a background, whichever is further
// away in perceived lightness.
func Contrast(bg tcell.Color) tcell.Color {
	r, g, b := bg.RGB()
	if r < 0 {
		return tcell.ColorDefault
	}
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}
