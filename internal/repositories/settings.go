package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mediastats/internal/shared"
)

// SettingsRepository persists string values under well-known keys in the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new [SettingsRepository] with the given database connection
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value stored under key, or [shared.ErrSettingNotFound].
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrSettingNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (r *SettingsRepository) Set(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty setting key", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SettingsRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (r *SettingsRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan setting key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
