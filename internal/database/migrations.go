package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

type migration struct {
	Version int
	Name    string
	SQL     string
}

// Initialize brings the store to the latest schema version, creating the
// file if needed, and seeds admin as the first user when no users exist.
// It is safe to call on a store that is already current.
func (s *Store) Initialize(admin User) error {
	scripts, err := loadMigrations(s.migrations)
	if err != nil {
		return err
	}

	if err := ensureDir(s.path); err != nil {
		return fmt.Errorf("%w: failed to create database directory: %w", ErrConnectivity, err)
	}

	conn, err := s.connect(true)
	if err != nil {
		return err
	}
	defer s.release(conn)

	if err := migrate(conn, scripts); err != nil {
		return err
	}

	return seedAdmin(conn, admin)
}

// loadMigrations reads NNNN_name.sql files from fsys, sorted by version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	if fsys == nil {
		return nil, fmt.Errorf("%w: no migration scripts configured", ErrMigration)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read migration scripts: %w", ErrMigration, err)
	}

	var scripts []migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMigration, err)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("%w: duplicate migration version %d (%s, %s)", ErrMigration, version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read migration %s: %w", ErrMigration, entry.Name(), err)
		}

		scripts = append(scripts, migration{Version: version, Name: name, SQL: string(content)})
	}

	if len(scripts) == 0 {
		return nil, fmt.Errorf("%w: no migration scripts found", ErrMigration)
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].Version < scripts[j].Version
	})

	return scripts, nil
}

// parseMigrationName splits "0003_add_index.sql" into 3 and "add_index".
func parseMigrationName(file string) (int, string, error) {
	base := strings.TrimSuffix(file, ".sql")
	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("migration file %q is not named NNNN_name.sql", file)
	}

	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("migration file %q has invalid version %q", file, prefix)
	}

	return version, name, nil
}

// migrate applies every script newer than the recorded version, one
// transaction per script.
func migrate(conn *sql.DB, scripts []migration) error {
	log.Info().Msg("Running database migrations")

	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: failed to create migrations table: %w", ErrMigration, err)
	}

	applied, err := appliedMigrations(conn)
	if err != nil {
		return err
	}

	known := make(map[int]string, len(scripts))
	for _, m := range scripts {
		known[m.Version] = m.Name
	}

	currentVersion := 0
	for version, name := range applied {
		knownName, ok := known[version]
		if !ok {
			return fmt.Errorf("%w: database has migration %d (%s) which is not in the known scripts", ErrMigration, version, name)
		}
		if knownName != name {
			return fmt.Errorf("%w: migration %d is recorded as %q but the script is %q", ErrMigration, version, name, knownName)
		}
		currentVersion = max(currentVersion, version)
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	for _, m := range scripts {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if m.Version < currentVersion {
			return fmt.Errorf("%w: migration %d (%s) is older than applied version %d", ErrMigration, m.Version, m.Name, currentVersion)
		}

		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying migration")

		err := runTx(conn, func(tx *sql.Tx) error {
			for i, stmt := range splitSQLStatements(m.SQL) {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("statement %d failed: %w", i+1, err)
				}
			}

			if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: migration %d (%s): %w", ErrMigration, m.Version, m.Name, err)
		}
		currentVersion = m.Version
	}

	log.Info().Int("version", currentVersion).Msg("Database migrations complete")
	return nil
}

func appliedMigrations(conn *sql.DB) (map[int]string, error) {
	rows, err := conn.Query("SELECT version, name FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read applied migrations: %w", ErrMigration, err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var version int
		var name string
		if err := rows.Scan(&version, &name); err != nil {
			return nil, fmt.Errorf("%w: failed to scan applied migration: %w", ErrMigration, err)
		}
		applied[version] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read applied migrations: %w", ErrMigration, err)
	}
	return applied, nil
}

// seedAdmin inserts admin when the user table is empty.
func seedAdmin(conn *sql.DB, admin User) error {
	if admin.Name == "" {
		return nil
	}

	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM user").Scan(&count); err != nil {
		return fmt.Errorf("failed to check users: %w", err)
	}
	if count > 0 {
		log.Debug().Int("users", count).Msg("Users already present, skipping admin seed")
		return nil
	}

	if _, err := conn.Exec("INSERT INTO user (username, password) VALUES (?, ?)", admin.Name, admin.Password); err != nil {
		return fmt.Errorf("%w: failed to create admin user: %w", ErrWrite, err)
	}

	log.Info().Str("username", admin.Name).Msg("Created admin user")
	return nil
}

// splitSQLStatements splits a SQL string into individual statements.
// It skips comment lines and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for line := range strings.SplitSeq(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
