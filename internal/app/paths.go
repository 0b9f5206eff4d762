package app

import (
	"errors"
	"os"
	"path/filepath"
)

// ExpandUserPath replaces a leading "~" with the home directory.
func ExpandUserPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	if len(path) == 1 {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}

	sep := path[1]
	if sep != '/' && sep != '\\' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}

// DefaultConfigPath returns the user config file when one exists.
func DefaultConfigPath() (string, bool) {
	return defaultConfigPath(os.UserConfigDir, os.Stat)
}

func defaultConfigPath(configDir func() (string, error), stat func(string) (os.FileInfo, error)) (string, bool) {
	dir, err := configDir()
	if err != nil || dir == "" {
		return "", false
	}
	path := filepath.Join(dir, "rfind", "config.toml")
	if _, err := stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return path, true
		}
		return "", false
	}
	return path, true
}
