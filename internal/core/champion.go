package core

import (
	"path/filepath"
	"regexp"
	"strings"

	"bocchi/internal/domain"
)

// championPrefix matches the leading champion name of a mod file,
// e.g. "Ahri_Glow.wad" or "Aatrox - Blood Moon.fantome".
var championPrefix = regexp.MustCompile(`^([A-Za-z]+)[-_\s]`)

// ChampionDetector guesses the champion a user file belongs to from its name
type ChampionDetector struct {
	known map[string]string // lower-case key -> canonical key
}

// NewChampionDetector creates a detector for the given champion keys.
// With no keys every alphabetic prefix is accepted.
func NewChampionDetector(champions []string) *ChampionDetector {
	known := make(map[string]string, len(champions))
	for _, c := range champions {
		known[strings.ToLower(c)] = c
	}
	return &ChampionDetector{known: known}
}

// Detect returns the champion key for fileName, or "" when none is recognized
func (d *ChampionDetector) Detect(fileName string) string {
	m := championPrefix.FindStringSubmatch(filepath.Base(fileName))
	if m == nil {
		return ""
	}
	if len(d.known) == 0 {
		return m[1]
	}
	return d.known[strings.ToLower(m[1])]
}

// resolveChampion applies the precedence: explicit option, metadata, file name, Custom
func (d *ChampionDetector) resolveChampion(option *string, info domain.ModInfo, fileName string) string {
	if option != nil {
		if *option == "" {
			return domain.CustomChampion
		}
		return *option
	}
	if info.Champion != "" {
		return info.Champion
	}
	if c := d.Detect(fileName); c != "" {
		return c
	}
	return domain.CustomChampion
}

// sanitizeModName turns free-form metadata into something usable as a directory name
func sanitizeModName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

func baseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
