package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"bocchi/internal/domain"
	"bocchi/internal/storage/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCache_Layout(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	assert.Equal(t, filepath.Join(dir, "mods", "Ahri_DRX Ahri"), c.ModPath("Ahri_DRX Ahri"))
	assert.Equal(t, filepath.Join(dir, "downloaded-skins", "Ahri", "DRX Ahri.zip"),
		c.ArchivePath(domain.SkinKey{ChampionKey: "Ahri", FileName: "DRX Ahri.zip"}))
	assert.Equal(t, filepath.Join(dir, "profiles"), c.ProfilesPath())
	assert.Equal(t, filepath.Join(dir, "temp-imports"), c.TempPath())
	assert.Equal(t, filepath.Join(dir, "bocchi.db"), c.DBPath())
	assert.Contains(t, c.ToolsPath(), filepath.Join(dir, "cslol-tools", "mod-tools"))
}

func TestCache_EnsureLayout(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	require.NoError(t, c.EnsureLayout())
	for _, sub := range []string{"mods", "downloaded-skins", "profiles", "temp-imports"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestCache_HasValidMod(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	assert.False(t, c.HasValidMod("Ahri_DRX Ahri"))

	// A directory without META/info.json is not a mod
	require.NoError(t, os.MkdirAll(filepath.Join(c.ModPath("Ahri_DRX Ahri"), "WAD"), 0755))
	assert.False(t, c.HasValidMod("Ahri_DRX Ahri"))

	writeFile(t, c.InfoPath("Ahri_DRX Ahri"), `{"Name":"DRX Ahri"}`)
	assert.True(t, c.HasValidMod("Ahri_DRX Ahri"))
}

func TestCache_Size(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	writeFile(t, c.InfoPath("Custom_Glow"), "12345")
	writeFile(t, filepath.Join(c.ModPath("Custom_Glow"), "WAD", "Glow.wad"), "abc")

	size, err := c.Size("Custom_Glow")
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)
}

func TestCache_DeleteArchive_PrunesEmptyChampionDir(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	a := domain.SkinKey{ChampionKey: "Ahri", FileName: "A.zip"}
	b := domain.SkinKey{ChampionKey: "Ahri", FileName: "B.zip"}
	writeFile(t, c.ArchivePath(a), "a")
	writeFile(t, c.ArchivePath(b), "b")

	require.NoError(t, c.DeleteArchive(a))
	assert.False(t, c.HasArchive(a))
	assert.DirExists(t, c.ChampionArchivePath("Ahri"))

	require.NoError(t, c.DeleteArchive(b))
	assert.NoDirExists(t, c.ChampionArchivePath("Ahri"))

	// Deleting again is not an error
	require.NoError(t, c.DeleteArchive(b))
}

func TestCache_DeleteMod(t *testing.T) {
	dir := t.TempDir()
	c := cache.New(dir)

	writeFile(t, c.InfoPath("Custom_Glow"), "{}")
	require.NoError(t, c.DeleteMod("Custom_Glow"))
	assert.NoDirExists(t, c.ModPath("Custom_Glow"))
	require.NoError(t, c.DeleteMod("Custom_Glow"))
}
