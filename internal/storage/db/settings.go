package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known setting keys
const (
	SettingGamePath = "game_path"
	SettingNoTFT    = "no_tft"
)

// SetSetting stores a JSON-encodable value under key
func (d *DB) SetSetting(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}

	_, err = d.Exec(`
        INSERT INTO settings (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            updated_at = CURRENT_TIMESTAMP
    `, key, string(data))
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// GetSetting decodes the value stored under key into out.
// It reports false when the key has never been set.
func (d *DB) GetSetting(key string, out any) (bool, error) {
	var raw string
	err := d.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting setting %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return true, nil
}

// GetString returns a string setting, or "" when unset
func (d *DB) GetString(key string) (string, error) {
	var s string
	if _, err := d.GetSetting(key, &s); err != nil {
		return "", err
	}
	return s, nil
}

// DeleteSetting removes a setting
func (d *DB) DeleteSetting(key string) error {
	if _, err := d.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// ListSettings returns all settings as raw JSON values
func (d *DB) ListSettings() (map[string]json.RawMessage, error) {
	rows, err := d.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings[key] = json.RawMessage(value)
	}
	return settings, rows.Err()
}
