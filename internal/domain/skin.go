package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Source tells where a skin's archive comes from
type Source string

const (
	SourceRepository Source = "repository" // Fetched from the remote skin repository
	SourceUser       Source = "user"       // Supplied as a local file by the user
)

func (s Source) String() string {
	return string(s)
}

// UserMarker prefixes the skin file of user-imported skins in selections ("[User] Glow.wad")
const UserMarker = "[User] "

// SkinKey is the identity of a skin: (championKey, fileName).
// The cached archive and the mod directory are two views of the same key.
type SkinKey struct {
	ChampionKey string
	FileName    string
}

func (k SkinKey) String() string {
	return k.ChampionKey + "/" + k.FileName
}

// SkinReference identifies a desired skin
type SkinReference struct {
	ChampionKey string
	SkinFile    string // Canonical archive name, e.g. "DRX Aatrox.zip" or "DRX Aatrox 266032.zip"
	Source      Source
	ChromaID    string // Optional chroma identifier
}

// Key returns the identity key of the reference. Champion-less skins are
// keyed under CustomChampion and the user marker is not part of the file name.
func (r SkinReference) Key() SkinKey {
	champion := r.ChampionKey
	if champion == "" {
		champion = CustomChampion
	}
	return SkinKey{ChampionKey: champion, FileName: strings.TrimPrefix(r.SkinFile, UserMarker)}
}

// ModName returns the skin file without extension and without the user marker
func (r SkinReference) ModName() string {
	name := strings.TrimPrefix(r.SkinFile, UserMarker)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ModDirName returns the name of the mod directory this reference resolves to
func (r SkinReference) ModDirName() string {
	return ModDirName(r.ChampionKey, r.ModName())
}

// IsChampionScoped reports whether the reference belongs to a real champion
func (r SkinReference) IsChampionScoped() bool {
	return r.ChampionKey != "" && r.ChampionKey != CustomChampion
}

func (r SkinReference) String() string {
	if r.ChromaID != "" {
		return fmt.Sprintf("%s (chroma %s)", r.Key(), r.ChromaID)
	}
	return r.Key().String()
}

// CanonicalSkinFile builds the archive file name the repository stores a skin under.
// The English name wins over the localized display name; colons are not allowed
// in repository file names.
func CanonicalSkinFile(displayName, englishName, chromaID string) string {
	name := englishName
	if name == "" {
		name = displayName
	}
	name = strings.ReplaceAll(name, ":", "")
	if chromaID != "" {
		name = name + " " + chromaID
	}
	return name + ".zip"
}

// ChromaBaseName returns the skin name a chroma file belongs to
// ("DRX Aatrox 266032.zip" with chroma "266032" -> "DRX Aatrox").
func ChromaBaseName(skinFile, chromaID string) string {
	base := strings.TrimSuffix(skinFile, filepath.Ext(skinFile))
	return strings.TrimSuffix(base, " "+chromaID)
}
