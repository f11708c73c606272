// Package cache describes the on-disk layout under the per-user data root.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"bocchi/internal/domain"
)

// Directory names under the data root
const (
	ModsDir     = "mods"
	ArchivesDir = "downloaded-skins"
	ProfilesDir = "profiles"
	TempDir     = "temp-imports"
	ToolsDir    = "cslol-tools"
)

// PartSuffix marks a download or copy that has not been committed yet
const PartSuffix = ".part"

// Cache manages the data root: mods, cached archives, overlay profiles and scratch space
type Cache struct {
	basePath string
}

// New creates a new cache manager
func New(basePath string) *Cache {
	return &Cache{basePath: basePath}
}

// ModsPath returns the directory holding normalized mod directories
func (c *Cache) ModsPath() string {
	return filepath.Join(c.basePath, ModsDir)
}

// ArchivesPath returns the directory holding cached archives
func (c *Cache) ArchivesPath() string {
	return filepath.Join(c.basePath, ArchivesDir)
}

// ProfilesPath returns the directory holding overlay build output
func (c *Cache) ProfilesPath() string {
	return filepath.Join(c.basePath, ProfilesDir)
}

// TempPath returns the scratch directory used while normalizing.
// It shares a filesystem with the mods directory so installs are a rename.
func (c *Cache) TempPath() string {
	return filepath.Join(c.basePath, TempDir)
}

// ToolsPath returns the default location of the mod-tools executable
func (c *Cache) ToolsPath() string {
	name := "mod-tools"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(c.basePath, ToolsDir, name)
}

// DBPath returns the path of the settings database
func (c *Cache) DBPath() string {
	return filepath.Join(c.basePath, "bocchi.db")
}

// ModPath returns the path of a mod directory
func (c *Cache) ModPath(modName string) string {
	return filepath.Join(c.ModsPath(), modName)
}

// InfoPath returns the path of a mod's META/info.json
func (c *Cache) InfoPath(modName string) string {
	return filepath.Join(c.ModPath(modName), domain.MetaDir, domain.InfoFile)
}

// ChampionArchivePath returns the cache directory of one champion
func (c *Cache) ChampionArchivePath(championKey string) string {
	return filepath.Join(c.ArchivesPath(), championKey)
}

// ArchivePath returns where the archive for a skin key is cached
func (c *Cache) ArchivePath(key domain.SkinKey) string {
	return filepath.Join(c.ChampionArchivePath(key.ChampionKey), key.FileName)
}

// EnsureLayout creates the data root directories
func (c *Cache) EnsureLayout() error {
	for _, dir := range []string{c.ModsPath(), c.ArchivesPath(), c.ProfilesPath(), c.TempPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// HasValidMod reports whether a mod directory exists and carries META/info.json
func (c *Cache) HasValidMod(modName string) bool {
	info, err := os.Stat(c.InfoPath(modName))
	return err == nil && info.Mode().IsRegular()
}

// HasArchive reports whether the archive for a skin key is cached
func (c *Cache) HasArchive(key domain.SkinKey) bool {
	info, err := os.Stat(c.ArchivePath(key))
	return err == nil && info.Mode().IsRegular()
}

// Size returns the total size of files in a mod directory
func (c *Cache) Size(modName string) (int64, error) {
	var totalSize int64
	err := filepath.WalkDir(c.ModPath(modName), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("calculating mod size: %w", err)
	}

	return totalSize, nil
}

// DeleteMod removes a mod directory. Missing directories are not an error.
func (c *Cache) DeleteMod(modName string) error {
	if err := os.RemoveAll(c.ModPath(modName)); err != nil {
		return fmt.Errorf("deleting mod: %w", err)
	}
	return nil
}

// DeleteArchive removes a cached archive and prunes its champion directory once empty
func (c *Cache) DeleteArchive(key domain.SkinKey) error {
	if err := os.Remove(c.ArchivePath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting archive: %w", err)
	}

	dir := c.ChampionArchivePath(key.ChampionKey)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading champion cache: %w", err)
	}
	if len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("pruning champion cache: %w", err)
		}
	}
	return nil
}
