// Package config holds the find/replace options, their defaults and the TOML
// file they are loaded from.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
)

// ErrInvalid marks a value that parsed but is not usable.
var ErrInvalid = errors.New("invalid config value")

const (
	DefaultResultBackground       = "rgb(245, 212, 122)"
	DefaultActiveResultBackground = "#accaec"
	DefaultPrevIcon               = "‹"
	DefaultNextIcon               = "›"
	DefaultFindKey                = "Ctrl+F"
	DefaultReplaceKey             = "Ctrl+R"
	DefaultQueryDelay             = time.Second
	DefaultTextChangeDelay        = time.Second
	DefaultSegmentHeight          = 5000
)

// Duration is a time.Duration written as "500ms" or "1s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: negative duration %q", ErrInvalid, text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Log configures the log file.
type Log struct {
	Path  string `toml:"path"`
	Debug bool   `toml:"debug"`
}

// Options configures the find/replace engine and its panel.
type Options struct {
	// CustomClass is shown in the panel title so several editors can be told apart.
	CustomClass            string   `toml:"custom_class"`
	ResultBackground       string   `toml:"result_background"`
	ActiveResultBackground string   `toml:"active_result_background"`
	ResultPrevIcon         string   `toml:"result_prev_icon"`
	ResultNextIcon         string   `toml:"result_next_icon"`
	FindKey                string   `toml:"find_key"`
	ReplaceKey             string   `toml:"replace_key"`
	QueryDelay             Duration `toml:"query_delay"`
	TextChangeDelay        Duration `toml:"text_change_delay"`
	SegmentHeight          int      `toml:"segment_height"`
	Log                    Log      `toml:"log"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		ResultBackground:       DefaultResultBackground,
		ActiveResultBackground: DefaultActiveResultBackground,
		ResultPrevIcon:         DefaultPrevIcon,
		ResultNextIcon:         DefaultNextIcon,
		FindKey:                DefaultFindKey,
		ReplaceKey:             DefaultReplaceKey,
		QueryDelay:             Duration{DefaultQueryDelay},
		TextChangeDelay:        Duration{DefaultTextChangeDelay},
		SegmentHeight:          DefaultSegmentHeight,
	}
}

// Load reads options from a TOML file on top of the defaults.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read config %s: %w", path, err)
	}
	opts, err := Parse(string(data))
	if err != nil {
		return Options{}, fmt.Errorf("config %s: %w", path, err)
	}
	return opts, nil
}

// Parse decodes TOML text on top of the defaults and validates the result.
func Parse(text string) (Options, error) {
	opts := Default()
	md, err := toml.Decode(text, &opts)
	if err != nil {
		return Options{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks that colors and key bindings parse.
func (o Options) Validate() error {
	if _, _, err := o.Colors(); err != nil {
		return err
	}
	if _, _, err := o.Keys(); err != nil {
		return err
	}
	if o.SegmentHeight <= 0 {
		return fmt.Errorf("%w: segment_height must be positive, got %d", ErrInvalid, o.SegmentHeight)
	}
	return nil
}

// Colors returns the highlight colors for regular and active results.
func (o Options) Colors() (result, active tcell.Color, err error) {
	result, err = ParseColor(o.ResultBackground)
	if err != nil {
		return 0, 0, fmt.Errorf("result_background: %w", err)
	}
	active, err = ParseColor(o.ActiveResultBackground)
	if err != nil {
		return 0, 0, fmt.Errorf("active_result_background: %w", err)
	}
	return result, active, nil
}

// Keys returns the find and replace shortcuts.
func (o Options) Keys() (find, replace KeyBinding, err error) {
	find, err = ParseKey(o.FindKey)
	if err != nil {
		return KeyBinding{}, KeyBinding{}, fmt.Errorf("find_key: %w", err)
	}
	replace, err = ParseKey(o.ReplaceKey)
	if err != nil {
		return KeyBinding{}, KeyBinding{}, fmt.Errorf("replace_key: %w", err)
	}
	if find == replace {
		return KeyBinding{}, KeyBinding{}, fmt.Errorf("%w: find_key and replace_key are both %s", ErrInvalid, find)
	}
	return find, replace, nil
}
