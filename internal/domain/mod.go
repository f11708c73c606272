package domain

import "strings"

// Canonical layout of a mod directory, as understood by mod-tools
const (
	MetaDir   = "META"
	InfoFile  = "info.json"
	WadDir    = "WAD"
	ImageDir  = "IMAGE"
	ImageBase = "preview"
)

// CustomChampion is the prefix for mods that are not tied to a champion
const CustomChampion = "Custom"

// Defaults written into synthesized metadata for raw asset imports
const (
	UserImportAuthor  = "User Import"
	DefaultModVersion = "1.0.0"
)

// PreviewExtensions lists the accepted preview image extensions, in lookup order
var PreviewExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ModInfo is the metadata descriptor stored at META/info.json
type ModInfo struct {
	Author      string `json:"Author"`
	Description string `json:"Description"`
	Name        string `json:"Name"`
	Version     string `json:"Version"`
	Champion    string `json:"Champion,omitempty"`
}

// ModDirectory is a normalized mod on disk
type ModDirectory struct {
	Name         string // Directory name, also the mod-tools mod identifier
	Path         string
	ChampionKey  string // CustomChampion for champion-less mods
	ModName      string
	Info         ModInfo
	PreviewImage string // Empty if the mod has no preview
}

// IsCustom reports whether the mod is not tied to a champion
func (m ModDirectory) IsCustom() bool {
	return m.ChampionKey == CustomChampion
}

// Artifact is an acquired archive on disk. Path is empty when the skin was
// already installed as a mod and no archive is cached.
type Artifact struct {
	Path        string
	ChampionKey string
	FileName    string
	Source      Source
}

// Key returns the identity key of the artifact
func (a Artifact) Key() SkinKey {
	return SkinKey{ChampionKey: a.ChampionKey, FileName: a.FileName}
}

// ModDirName builds a mod directory name from a champion key and mod name.
// An empty champion key yields a Custom_ mod.
func ModDirName(championKey, modName string) string {
	if championKey == "" {
		championKey = CustomChampion
	}
	return championKey + "_" + modName
}

// ParseModDirName splits a mod directory name into champion key and mod name
func ParseModDirName(name string) (championKey, modName string, ok bool) {
	championKey, modName, ok = strings.Cut(name, "_")
	if !ok || championKey == "" || modName == "" {
		return "", "", false
	}
	return championKey, modName, true
}

// IsPreviewExtension reports whether ext (with leading dot, any case) is an accepted preview image type
func IsPreviewExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range PreviewExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// PreviewMIMEType returns the MIME type for a preview image extension
func PreviewMIMEType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "image/webp"
	}
}
