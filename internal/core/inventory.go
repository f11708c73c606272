package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bocchi/internal/domain"
	"bocchi/internal/linker"
	"bocchi/internal/source/skinrepo"
	"bocchi/internal/storage/cache"

	"github.com/rs/zerolog"
)

// SkinEntry is one identity key with whichever views of it exist on disk
type SkinEntry struct {
	Key      domain.SkinKey
	Artifact *domain.Artifact     // nil when no archive is cached
	Mod      *domain.ModDirectory // nil when the skin is not installed
}

// Inventory lists and edits what is installed and cached under the data root
type Inventory struct {
	cache  *cache.Cache
	copier linker.Linker
	logger zerolog.Logger
}

// NewInventory creates a new Inventory
func NewInventory(c *cache.Cache, logger zerolog.Logger) *Inventory {
	return &Inventory{
		cache:  c,
		copier: linker.NewCopy(),
		logger: logger,
	}
}

// Mods returns every valid mod directory, sorted by name
func (inv *Inventory) Mods() ([]domain.ModDirectory, error) {
	entries, err := os.ReadDir(inv.cache.ModsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mods directory: %w", err)
	}

	var mods []domain.ModDirectory
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		mod, err := inv.load(e.Name())
		if err != nil {
			inv.logger.Debug().Err(err).Str("mod", e.Name()).Msg("Skipping mod directory")
			continue
		}
		mods = append(mods, *mod)
	}

	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
	return mods, nil
}

// load reads a single mod directory
func (inv *Inventory) load(name string) (*domain.ModDirectory, error) {
	champion, modName, ok := domain.ParseModDirName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized mod directory name %q", domain.ErrInvalidModStructure, name)
	}
	if !inv.cache.HasValidMod(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidModStructure, name)
	}

	dir := inv.cache.ModPath(name)
	info, err := readModInfo(dir)
	if err != nil {
		return nil, err
	}

	return &domain.ModDirectory{
		Name:         name,
		Path:         dir,
		ChampionKey:  champion,
		ModName:      modName,
		Info:         info,
		PreviewImage: findPreview(dir),
	}, nil
}

// Artifacts returns the cached archives, sorted by key. In-progress downloads are not listed.
func (inv *Inventory) Artifacts() ([]domain.Artifact, error) {
	root := inv.cache.ArchivesPath()
	champions, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive cache: %w", err)
	}

	var artifacts []domain.Artifact
	for _, champ := range champions {
		if !champ.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, champ.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading archive cache: %w", err)
		}
		for _, f := range files {
			if !f.Type().IsRegular() || strings.HasSuffix(f.Name(), cache.PartSuffix) {
				continue
			}
			source := domain.SourceRepository
			if champ.Name() == domain.CustomChampion {
				source = domain.SourceUser
			}
			artifacts = append(artifacts, domain.Artifact{
				Path:        filepath.Join(root, champ.Name(), f.Name()),
				ChampionKey: champ.Name(),
				FileName:    f.Name(),
				Source:      source,
			})
		}
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Key().String() < artifacts[j].Key().String()
	})
	return artifacts, nil
}

// Skins joins cached archives and installed mods on their identity key.
// A mod with no archive is keyed as <ModName>.zip.
func (inv *Inventory) Skins() ([]SkinEntry, error) {
	artifacts, err := inv.Artifacts()
	if err != nil {
		return nil, err
	}
	mods, err := inv.Mods()
	if err != nil {
		return nil, err
	}

	byKey := make(map[domain.SkinKey]*SkinEntry)
	byMod := make(map[string]*SkinEntry) // mod directory name -> entry
	var order []domain.SkinKey

	for i := range artifacts {
		art := &artifacts[i]
		key := art.Key()
		entry := &SkinEntry{Key: key, Artifact: art}
		byKey[key] = entry
		order = append(order, key)

		modName := strings.TrimSuffix(art.FileName, filepath.Ext(art.FileName))
		dirName := domain.ModDirName(art.ChampionKey, modName)
		if _, taken := byMod[dirName]; !taken {
			byMod[dirName] = entry
		}
	}

	for i := range mods {
		mod := &mods[i]
		if entry, ok := byMod[mod.Name]; ok && entry.Mod == nil {
			entry.Mod = mod
			continue
		}
		key := domain.SkinKey{ChampionKey: mod.ChampionKey, FileName: mod.ModName + ".zip"}
		if _, ok := byKey[key]; ok {
			continue
		}
		byKey[key] = &SkinEntry{Key: key, Mod: mod}
		order = append(order, key)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })
	skins := make([]SkinEntry, 0, len(order))
	for _, key := range order {
		skins = append(skins, *byKey[key])
	}
	return skins, nil
}

// HasMod reports whether the mod for ref is installed
func (inv *Inventory) HasMod(ref domain.SkinReference) bool {
	return inv.cache.HasValidMod(ref.ModDirName())
}

// PreviewImage returns the preview image of a mod and its MIME type
func (inv *Inventory) PreviewImage(modName string) (path, mimeType string, ok bool) {
	if skinrepo.ValidateComponent(modName) != nil {
		return "", "", false
	}
	path = findPreview(inv.cache.ModPath(modName))
	if path == "" {
		return "", "", false
	}
	return path, domain.PreviewMIMEType(filepath.Ext(path)), true
}

// Delete removes both the installed mod and the cached archive of ref
func (inv *Inventory) Delete(ref domain.SkinReference) error {
	modName := ref.ModDirName()
	if err := skinrepo.ValidateComponent(modName); err != nil {
		return err
	}
	key := ref.Key()
	if err := skinrepo.ValidateComponent(key.FileName); err != nil {
		return err
	}

	if err := inv.cache.DeleteMod(modName); err != nil {
		return err
	}
	if err := inv.cache.DeleteArchive(key); err != nil {
		return err
	}
	inv.logger.Info().Str("skin", key.String()).Msg("Skin deleted")
	return nil
}

// DeleteMod removes an installed mod directory by name
func (inv *Inventory) DeleteMod(name string) error {
	if err := skinrepo.ValidateComponent(name); err != nil {
		return err
	}
	if _, err := os.Stat(inv.cache.ModPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrModNotFound, name)
		}
		return fmt.Errorf("checking mod: %w", err)
	}
	if err := inv.cache.DeleteMod(name); err != nil {
		return err
	}
	inv.logger.Info().Str("mod", name).Msg("Mod deleted")
	return nil
}

// EditCustom renames an installed mod, keeping its champion prefix, and
// optionally replaces its preview image. An empty newName keeps the name.
func (inv *Inventory) EditCustom(name, newName, imagePath string) (*domain.ModDirectory, error) {
	if err := skinrepo.ValidateComponent(name); err != nil {
		return nil, err
	}
	champion, oldName, ok := domain.ParseModDirName(name)
	if !ok || !inv.cache.HasValidMod(name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, name)
	}
	if imagePath != "" && !domain.IsPreviewExtension(filepath.Ext(imagePath)) {
		return nil, fmt.Errorf("%w: preview image must be jpg, jpeg, png or webp", domain.ErrUnsupportedFileType)
	}

	target := name
	if newName != "" {
		clean := sanitizeModName(newName)
		if clean == "" {
			return nil, fmt.Errorf("invalid mod name %q", newName)
		}
		target = domain.ModDirName(champion, clean)
	}

	if target != name {
		if _, err := os.Stat(inv.cache.ModPath(target)); err == nil {
			return nil, fmt.Errorf("mod already exists: %s", target)
		}
		if err := os.Rename(inv.cache.ModPath(name), inv.cache.ModPath(target)); err != nil {
			return nil, fmt.Errorf("renaming mod: %w", err)
		}

		dir := inv.cache.ModPath(target)
		info, err := readModInfo(dir)
		if err != nil {
			return nil, fmt.Errorf("reading mod info: %w", err)
		}
		_, info.Name, _ = domain.ParseModDirName(target)
		if err := writeModInfo(dir, info); err != nil {
			return nil, err
		}
		inv.logger.Info().Str("from", oldName).Str("to", info.Name).Str("champion", champion).Msg("Mod renamed")
	}

	if imagePath != "" {
		if err := setPreview(inv.copier, inv.cache.ModPath(target), imagePath); err != nil {
			return nil, err
		}
	}

	return inv.load(target)
}

// CollectGarbage removes leftover partial downloads and scratch directories.
// It must not run while an acquisition or import is in progress.
func (inv *Inventory) CollectGarbage() (int, error) {
	removed := 0

	err := filepath.WalkDir(inv.cache.ArchivesPath(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), cache.PartSuffix) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("collecting partial downloads: %w", err)
	}

	entries, err := os.ReadDir(inv.cache.TempPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return removed, fmt.Errorf("reading temp directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(inv.cache.TempPath(), e.Name())); err != nil {
			return removed, fmt.Errorf("removing scratch directory: %w", err)
		}
		removed++
	}

	if removed > 0 {
		inv.logger.Info().Int("removed", removed).Msg("Garbage collected")
	}
	return removed, nil
}
