package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bocchi/internal/domain"
)

// HardlinkLinker places files using hard links. When the source lives on
// another filesystem it falls back to copying.
type HardlinkLinker struct {
	fallback *CopyLinker
}

// NewHardlink creates a new hardlink linker
func NewHardlink() *HardlinkLinker {
	return &HardlinkLinker{fallback: NewCopy()}
}

// Place creates a hard link from src to dst
func (l *HardlinkLinker) Place(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating destination dir: %w", err)
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing existing file: %w", err)
	}

	if err := os.Link(src, dst); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) {
			if _, statErr := os.Stat(src); statErr == nil {
				return l.fallback.Place(src, dst)
			}
		}
		return fmt.Errorf("creating hardlink: %w", err)
	}

	return nil
}

// Method returns the link method
func (l *HardlinkLinker) Method() domain.LinkMethod {
	return domain.LinkHardlink
}
