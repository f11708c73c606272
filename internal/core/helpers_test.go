package core_test

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"bocchi/internal/domain"

	"github.com/stretchr/testify/require"
)

// createZip writes a zip archive at path containing files (name -> content)
func createZip(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

// modArchive returns the contents of a well-formed mod archive
func modArchive(t *testing.T, info domain.ModInfo) map[string]string {
	t.Helper()
	data, err := json.Marshal(info)
	require.NoError(t, err)
	return map[string]string{
		"META/info.json":      string(data),
		"WAD/Skin.wad.client": "wad bytes",
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readInfo(t *testing.T, modDir string) domain.ModInfo {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(modDir, "META", "info.json"))
	require.NoError(t, err)
	var info domain.ModInfo
	require.NoError(t, json.Unmarshal(data, &info))
	return info
}

func readFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
