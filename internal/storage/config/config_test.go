package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bocchi/internal/domain"
	"bocchi/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.LinkCopy, cfg.LinkMethod)
	assert.Equal(t, time.Second, cfg.Patcher.GracePeriod)
	assert.True(t, cfg.Patcher.NoTFT)
	assert.False(t, cfg.Patcher.IgnoreConflict)
	assert.Equal(t, config.DefaultAllowedMessages, cfg.Patcher.AllowedMessages)
	assert.Equal(t, config.DefaultMaxConcurrentDownloads, cfg.MaxConcurrentDownloads)
	assert.Equal(t, "darkseal-org", cfg.Repository.Org)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()

	content := `
import_link_method: hardlink
max_concurrent_downloads: 2
game_path: /games/league
champions: [Ahri, Aatrox]
patcher:
  grace_period: 250ms
  allowed_messages: ["Patching"]
  no_tft: false
repository:
  raw_base_url: http://localhost:9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.LinkHardlink, cfg.LinkMethod)
	assert.Equal(t, 2, cfg.MaxConcurrentDownloads)
	assert.Equal(t, "/games/league", cfg.GamePath)
	assert.Equal(t, []string{"Ahri", "Aatrox"}, cfg.Champions)
	assert.Equal(t, 250*time.Millisecond, cfg.Patcher.GracePeriod)
	assert.Equal(t, config.DefaultBuildTimeout, cfg.Patcher.BuildTimeout)
	assert.Equal(t, []string{"Patching"}, cfg.Patcher.AllowedMessages)
	assert.False(t, cfg.Patcher.NoTFT)

	repo := cfg.SkinRepository()
	assert.Equal(t, "http://localhost:9000", repo.RawBaseURL)
	assert.Equal(t, "https://github.com", repo.BaseURL)
	assert.Equal(t, "lol-skins", repo.Name)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative concurrency", "max_concurrent_downloads: -1\n"},
		{"negative grace", "patcher:\n  grace_period: -1s\n"},
		{"zero grace", "patcher:\n  grace_period: 0s\n"},
		{"unknown link method", "import_link_method: symlink\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0644))

			_, err := config.Load(dir)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("patcher: [\n"), 0644))

	_, err := config.Load(dir)
	assert.ErrorContains(t, err, "parsing config")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.LinkMethod = domain.LinkHardlink
	cfg.GamePath = "/games/league"
	cfg.Patcher.GracePeriod = 2 * time.Second
	require.NoError(t, cfg.Save(dir))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkHardlink, loaded.LinkMethod)
	assert.Equal(t, "/games/league", loaded.GamePath)
	assert.Equal(t, 2*time.Second, loaded.Patcher.GracePeriod)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("tools_path: /opt/mod-tools\n"), 0644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/mod-tools", cfg.ToolsPath)

	_, err = config.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = config.LoadFile("relative.yaml")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestDefaultDirs(t *testing.T) {
	assert.Equal(t, "bocchi", filepath.Base(config.DefaultConfigDir()))
	assert.Equal(t, "bocchi", filepath.Base(config.DefaultDataDir()))
}
