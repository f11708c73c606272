package db_test

import (
	"path/filepath"
	"testing"

	"bocchi/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "bocchi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestNew_RunsMigrations(t *testing.T) {
	database := openDB(t)

	var count int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count))
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM favorites").Scan(&count))

	var version int
	require.NoError(t, database.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bocchi.db")

	first, err := db.New(path)
	require.NoError(t, err)
	require.NoError(t, first.SetSetting(db.SettingGamePath, "/games/league"))
	require.NoError(t, first.Close())

	second, err := db.New(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetString(db.SettingGamePath)
	require.NoError(t, err)
	assert.Equal(t, "/games/league", got)
}

func TestSettings(t *testing.T) {
	database := openDB(t)

	var noTFT bool
	found, err := database.GetSetting(db.SettingNoTFT, &noTFT)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, database.SetSetting(db.SettingNoTFT, true))
	found, err = database.GetSetting(db.SettingNoTFT, &noTFT)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, noTFT)

	// Overwrite
	require.NoError(t, database.SetSetting(db.SettingNoTFT, false))
	_, err = database.GetSetting(db.SettingNoTFT, &noTFT)
	require.NoError(t, err)
	assert.False(t, noTFT)

	type window struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	require.NoError(t, database.SetSetting("window", window{Width: 800, Height: 600}))
	var w window
	_, err = database.GetSetting("window", &w)
	require.NoError(t, err)
	assert.Equal(t, window{800, 600}, w)

	all, err := database.ListSettings()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.JSONEq(t, `{"width":800,"height":600}`, string(all["window"]))

	require.NoError(t, database.DeleteSetting("window"))
	got, err := database.GetString("window")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFavorites(t *testing.T) {
	database := openDB(t)

	require.NoError(t, database.AddFavorite("Ahri", "103001", "Dynasty Ahri"))
	require.NoError(t, database.AddFavorite("Aatrox", "266032", "DRX Aatrox"))
	// Re-adding updates the name without duplicating
	require.NoError(t, database.AddFavorite("Ahri", "103001", "Dynasty Ahri (renamed)"))

	fav, err := database.IsFavorite("Ahri", "103001")
	require.NoError(t, err)
	assert.True(t, fav)

	favorites, err := database.ListFavorites()
	require.NoError(t, err)
	require.Len(t, favorites, 2)

	names := map[string]string{}
	for _, f := range favorites {
		names[f.ChampionKey] = f.SkinName
		assert.False(t, f.AddedAt.IsZero())
	}
	assert.Equal(t, "Dynasty Ahri (renamed)", names["Ahri"])

	require.NoError(t, database.RemoveFavorite("Ahri", "103001"))
	require.NoError(t, database.RemoveFavorite("Ahri", "103001"))

	fav, err = database.IsFavorite("Ahri", "103001")
	require.NoError(t, err)
	assert.False(t, fav)
}
