package repository

import (
	"database/sql"

	"storysquad/internal/database"
)

// SettingsRepository is the process-wide key/value settings storage.
// The credential cache persists session records through it. The column is
// named setting_key because KEY is reserved in MySQL.
type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key. A missing key returns
// ("", nil): absence is a valid outcome here, not a failure.
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE setting_key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := r.db.Dialect.UpsertSettings()
	_, err := r.db.Exec(query, key, value)
	return err
}

// DeleteSetting removes a setting; deleting a missing key is a no-op
func (r *SettingsRepository) DeleteSetting(key string) error {
	query := `DELETE FROM settings WHERE setting_key = ?`
	_, err := r.db.Exec(query, key)
	return err
}
