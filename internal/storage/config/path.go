// Package config provides configuration file parsing and validation.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ParseConfigPath validates an explicit config file path (--config-file) and
// returns it cleaned. The path must be absolute, free of "..", point at an
// existing regular file and carry a .yaml or .yml extension.
func ParseConfigPath(path string) (string, error) {
	switch {
	case path == "":
		return "", errors.New("config path cannot be empty")
	case !filepath.IsAbs(path):
		return "", errors.New("config path must be absolute")
	case strings.Contains(path, ".."):
		return "", errors.New("config path contains invalid traversal")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("config file does not exist")
		}
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("config path is a directory, not a file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return filepath.Clean(path), nil
	default:
		return "", errors.New("config file must have .yaml or .yml extension")
	}
}
