package db

import (
	"fmt"
	"time"
)

// Favorite is a skin the user marked for quick access
type Favorite struct {
	ChampionKey string
	SkinID      string
	SkinName    string
	AddedAt     time.Time
}

// AddFavorite saves a favorite; adding an existing one updates its name
func (d *DB) AddFavorite(championKey, skinID, skinName string) error {
	_, err := d.Exec(`
        INSERT INTO favorites (champion_key, skin_id, skin_name, added_at)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(champion_key, skin_id) DO UPDATE SET
            skin_name = excluded.skin_name
    `, championKey, skinID, skinName)
	if err != nil {
		return fmt.Errorf("saving favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite. Removing an unknown favorite is not an error.
func (d *DB) RemoveFavorite(championKey, skinID string) error {
	_, err := d.Exec("DELETE FROM favorites WHERE champion_key = ? AND skin_id = ?", championKey, skinID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// IsFavorite checks whether a skin is a favorite
func (d *DB) IsFavorite(championKey, skinID string) (bool, error) {
	var count int
	err := d.QueryRow("SELECT COUNT(*) FROM favorites WHERE champion_key = ? AND skin_id = ?",
		championKey, skinID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns all favorites, oldest first
func (d *DB) ListFavorites() ([]Favorite, error) {
	rows, err := d.Query(`
        SELECT champion_key, skin_id, skin_name, added_at
        FROM favorites
        ORDER BY added_at, champion_key, skin_id
    `)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ChampionKey, &f.SkinID, &f.SkinName, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}
