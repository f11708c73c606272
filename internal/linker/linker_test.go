package linker_test

import (
	"os"
	"path/filepath"
	"testing"

	"bocchi/internal/domain"
	"bocchi/internal/linker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHardlinkLinker_Place(t *testing.T) {
	dir := t.TempDir()
	srcFile := filepath.Join(dir, "Glow.wad")
	dstFile := filepath.Join(dir, "scratch", "WAD", "Glow.wad")
	require.NoError(t, os.WriteFile(srcFile, []byte("content"), 0644))

	l := linker.NewHardlink()
	require.NoError(t, l.Place(srcFile, dstFile))

	content, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)

	srcInfo, err := os.Stat(srcFile)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dstFile)
	require.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo))
}

func TestHardlinkLinker_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	srcFile := filepath.Join(dir, "new.wad")
	dstFile := filepath.Join(dir, "dst.wad")
	require.NoError(t, os.WriteFile(srcFile, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dstFile, []byte("old"), 0644))

	require.NoError(t, linker.NewHardlink().Place(srcFile, dstFile))

	content, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), content)
}

func TestHardlinkLinker_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := linker.NewHardlink().Place(filepath.Join(dir, "missing.wad"), filepath.Join(dir, "dst.wad"))
	assert.Error(t, err)
}

func TestCopyLinker_Place(t *testing.T) {
	dir := t.TempDir()
	srcFile := filepath.Join(dir, "Glow.wad")
	dstFile := filepath.Join(dir, "scratch", "WAD", "Glow.wad")
	require.NoError(t, os.WriteFile(srcFile, []byte("content"), 0644))

	l := linker.NewCopy()
	require.NoError(t, l.Place(srcFile, dstFile))

	content, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)

	// Independent copy: removing the source keeps the destination
	require.NoError(t, os.Remove(srcFile))
	_, err = os.Stat(dstFile)
	assert.NoError(t, err)
}

func TestCopyLinker_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	err := linker.NewCopy().Place(dir, filepath.Join(t.TempDir(), "dst"))
	assert.Error(t, err)
}

func TestNew_ReturnsCorrectType(t *testing.T) {
	assert.Equal(t, domain.LinkCopy, linker.New(domain.LinkCopy).Method())
	assert.Equal(t, domain.LinkHardlink, linker.New(domain.LinkHardlink).Method())
}
