package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingDownloadDir is the persisted destination-directory key.
const SettingDownloadDir = "download_dir"

// GetSetting returns the stored value for key, or "" when unset.
func (s *PersistentStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores or overwrites a setting.
func (s *PersistentStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// ClearSetting removes a setting so lookups fall back to the default.
func (s *PersistentStore) ClearSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to clear setting %s: %w", key, err)
	}
	return nil
}
