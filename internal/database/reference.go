package database

import (
	"database/sql"
	"fmt"
)

// ListRoles returns role names in storage order.
func (s *Store) ListRoles() ([]string, error) {
	roles, err := queryStrings(s, "SELECT name FROM role")
	if err != nil {
		return []string{}, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// ListGenders returns gender names in storage order.
func (s *Store) ListGenders() ([]string, error) {
	genders, err := queryStrings(s, "SELECT name FROM gender")
	if err != nil {
		return []string{}, fmt.Errorf("failed to list genders: %w", err)
	}
	return genders, nil
}

// ListSections returns section numbers in storage order.
func (s *Store) ListSections() ([]int, error) {
	sections := []int{}
	err := s.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query("SELECT num FROM sektion")
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var num int
			if err := rows.Scan(&num); err != nil {
				return err
			}
			sections = append(sections, num)
		}
		return rows.Err()
	})
	if err != nil {
		return []int{}, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// InsertRole adds a role.
func (s *Store) InsertRole(name string) error {
	return s.insertReference("INSERT INTO role (name) VALUES (?)", "role", name)
}

// InsertGender adds a gender.
func (s *Store) InsertGender(name string) error {
	return s.insertReference("INSERT INTO gender (name) VALUES (?)", "gender", name)
}

// InsertSection adds a section.
func (s *Store) InsertSection(num int) error {
	return s.insertReference("INSERT INTO sektion (num) VALUES (?)", "section", num)
}

func (s *Store) insertReference(query, kind string, value any) error {
	return s.withConn(func(conn *sql.DB) error {
		if _, err := conn.Exec(query, value); err != nil {
			return fmt.Errorf("%w: failed to insert %s %v: %w", ErrWrite, kind, value, err)
		}
		return nil
	})
}

func queryStrings(s *Store, query string, args ...any) ([]string, error) {
	values := []string{}
	err := s.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query(query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return err
			}
			values = append(values, v)
		}
		return rows.Err()
	})
	return values, err
}
