package database

import (
	"database/sql"
	"fmt"
)

// Candidate is a person who can be nominated, identified by name and gender.
type Candidate struct {
	Name   string
	Gender string
}

// InsertCandidate inserts a candidate in its own transaction.
// Callers check CandidateExists first; the check and the insert are not
// atomic, so a racing duplicate fails here with ErrWrite.
func (s *Store) InsertCandidate(candidate Candidate) error {
	return s.transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO candidate (name, gender) VALUES (?, ?)
		`, candidate.Name, candidate.Gender); err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
		return nil
	})
}

// EnsureCandidate inserts the candidate unless the same name and gender
// already exist, in a single statement. It reports whether a row was created.
func (s *Store) EnsureCandidate(candidate Candidate) (bool, error) {
	var created bool
	err := s.transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO candidate (name, gender) VALUES (?, ?)
			ON CONFLICT (name, gender) DO NOTHING
		`, candidate.Name, candidate.Gender)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		created = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// CandidateExists reports whether a candidate with the same name and
// gender is stored.
func (s *Store) CandidateExists(candidate Candidate) (bool, error) {
	var count int
	err := s.withConn(func(conn *sql.DB) error {
		return conn.QueryRow(`
			SELECT COUNT(*) FROM candidate WHERE name = ? AND gender = ?
		`, candidate.Name, candidate.Gender).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check candidate: %w", err)
	}
	return count > 0, nil
}

// SweepOrphanCandidates deletes every candidate no assignment refers to
// and returns how many were removed.
func (s *Store) SweepOrphanCandidates() (int64, error) {
	var removed int64
	err := s.transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			DELETE FROM candidate
			WHERE name NOT IN (SELECT candidate_name FROM role_sektion_candidate)
		`)
		if err != nil {
			return fmt.Errorf("failed to delete unused candidates: %w", err)
		}

		removed, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
