package database

import (
	"database/sql"
	"fmt"
)

// User is an account of the election tool. Password is the already
// encoded, comparable form; the store never transforms it.
type User struct {
	Name     string
	Password string
}

// InsertUser inserts a new user. A duplicate username is an ErrWrite.
func (s *Store) InsertUser(user User) error {
	return s.withConn(func(conn *sql.DB) error {
		_, err := conn.Exec(`
			INSERT INTO user (username, password)
			VALUES (?, ?)
		`, user.Name, user.Password)
		if err != nil {
			return fmt.Errorf("%w: failed to insert user: %w", ErrWrite, err)
		}
		return nil
	})
}

// ConfirmUser reports whether exactly one stored user matches both the
// username and password.
func (s *Store) ConfirmUser(user User) (bool, error) {
	var count int
	err := s.withConn(func(conn *sql.DB) error {
		return conn.QueryRow(`
			SELECT COUNT(*) FROM user WHERE username = ? AND password = ?
		`, user.Name, user.Password).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("failed to confirm user: %w", err)
	}
	return count == 1, nil
}
