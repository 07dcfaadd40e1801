package database

import (
	"database/sql"
	"fmt"
)

// Assignment nominates a candidate for a role in a section.
type Assignment struct {
	Section       int
	Role          string
	CandidateName string
}

// InsertAssignments nominates every candidate for role in section. All rows
// are written in one transaction; if any row fails none are kept.
func (s *Store) InsertAssignments(candidates []Candidate, role string, section int) error {
	if len(candidates) == 0 {
		return nil
	}

	return s.transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO role_sektion_candidate (sektion_num, role_name, candidate_name)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare assignment insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range candidates {
			if _, err := stmt.Exec(section, role, c.Name); err != nil {
				return fmt.Errorf("failed to assign %q to %s in section %d: %w", c.Name, role, section, err)
			}
		}
		return nil
	})
}

// ListCandidatesFor returns the candidates nominated for role in section.
// The result is empty, never nil, when nothing matches or the store is
// unreachable.
func (s *Store) ListCandidatesFor(section int, role string) ([]Candidate, error) {
	candidates := []Candidate{}
	err := s.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query(`
			SELECT role_sektion_candidate.candidate_name, candidate.gender
			FROM role_sektion_candidate
			INNER JOIN candidate ON role_sektion_candidate.candidate_name = candidate.name
			WHERE role_sektion_candidate.sektion_num = ?
			AND role_sektion_candidate.role_name = ?
		`, section, role)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c Candidate
			if err := rows.Scan(&c.Name, &c.Gender); err != nil {
				return err
			}
			candidates = append(candidates, c)
		}
		return rows.Err()
	})
	if err != nil {
		return []Candidate{}, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// ListAssignments returns every assignment ordered by section, role and
// candidate name.
func (s *Store) ListAssignments() ([]Assignment, error) {
	assignments := []Assignment{}
	err := s.withConn(func(conn *sql.DB) error {
		rows, err := conn.Query(`
			SELECT sektion_num, role_name, candidate_name
			FROM role_sektion_candidate
			ORDER BY sektion_num, role_name, candidate_name
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a Assignment
			if err := rows.Scan(&a.Section, &a.Role, &a.CandidateName); err != nil {
				return err
			}
			assignments = append(assignments, a)
		}
		return rows.Err()
	})
	if err != nil {
		return []Assignment{}, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// ClearAssignments deletes all assignments for role in section and returns
// how many were removed.
func (s *Store) ClearAssignments(section int, role string) (int64, error) {
	var removed int64
	err := s.transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			DELETE FROM role_sektion_candidate WHERE sektion_num = ? AND role_name = ?
		`, section, role)
		if err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
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
