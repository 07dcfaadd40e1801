package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetSetting retrieves a setting value by key. A missing key is "".
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.withConn(func(conn *sql.DB) error {
		return conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting value
func (s *Store) SetSetting(key, value string) error {
	return s.withConn(func(conn *sql.DB) error {
		_, err := conn.Exec(`
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, time.Now())
		if err != nil {
			return fmt.Errorf("%w: failed to set setting %s: %w", ErrWrite, key, err)
		}
		return nil
	})
}

// GetAllSettings retrieves all settings
func (s *Store) GetAllSettings() (map[string]string, error) {
	settings := make(map[string]string)
	err := s.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query("SELECT key, value FROM settings")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return err
			}
			settings[key] = value
		}
		return rows.Err()
	})
	if err != nil {
		return map[string]string{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}
