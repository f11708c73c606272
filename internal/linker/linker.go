// Package linker places user-supplied files into a scratch mod directory.
package linker

import "bocchi/internal/domain"

// Linker places the file at src into dst, creating parent directories
type Linker interface {
	Place(src, dst string) error
	Method() domain.LinkMethod
}

// New creates a linker for the given method
func New(method domain.LinkMethod) Linker {
	switch method {
	case domain.LinkHardlink:
		return NewHardlink()
	default:
		return NewCopy()
	}
}
