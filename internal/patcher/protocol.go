package patcher

import (
	"strings"

	"bocchi/internal/domain"
)

// Line prefixes written by mod-tools runoverlay
const (
	statusPrefix   = "Status: "
	progressPrefix = "[DLL] "
)

// LineKind classifies one line of mod-tools stdout
type LineKind int

const (
	LineUnclassified LineKind = iota
	LineStatus
	LineProgress
)

func (k LineKind) String() string {
	switch k {
	case LineStatus:
		return "status"
	case LineProgress:
		return "progress"
	default:
		return "unclassified"
	}
}

// ParseLine splits a stdout line into its kind and payload
func ParseLine(line string) (LineKind, string) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case strings.HasPrefix(line, statusPrefix):
		return LineStatus, strings.TrimPrefix(line, statusPrefix)
	case strings.HasPrefix(line, progressPrefix):
		return LineProgress, strings.TrimPrefix(line, progressPrefix)
	default:
		return LineUnclassified, line
	}
}

// Filter decides which stdout lines reach the UI.
// Status lines always pass; progress lines pass only when allow-listed.
type Filter struct {
	allowed map[string]struct{}
}

// NewFilter creates a filter for the given progress messages
func NewFilter(allowed []string) *Filter {
	m := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		m[a] = struct{}{}
	}
	return &Filter{allowed: m}
}

// Classify returns the event kind and text for a stdout line, and whether it is forwarded
func (f *Filter) Classify(line string) (domain.EventKind, string, bool) {
	kind, text := ParseLine(line)
	switch kind {
	case LineStatus:
		return domain.EventStatus, text, true
	case LineProgress:
		_, ok := f.allowed[text]
		return domain.EventProgress, text, ok
	default:
		return "", text, false
	}
}
