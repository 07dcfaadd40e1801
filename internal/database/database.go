package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/wahlprogramm/wahlprogramm/internal/database/migrations"
)

const (
	// DefaultPath is used when Config.Path is empty.
	DefaultPath = "./wahlprogramm.db"
	// DefaultBusyTimeout is how long SQLite waits on a locked file.
	DefaultBusyTimeout = 5 * time.Second

	jdbcPrefix = "jdbc:sqlite:"
)

// Config holds everything needed to reach the store.
type Config struct {
	// Path is the SQLite file checked by StoreExists and created by Initialize.
	Path string
	// DSN is the resolved connection string. When set, its file replaces
	// Path and its query parameters are kept, but foreign keys and the
	// open mode are always enforced.
	DSN string
	// BusyTimeout applies unless the DSN sets its own busy_timeout pragma.
	BusyTimeout time.Duration
}

// Opener opens a database handle for a DSN.
type Opener func(dsn string) (*sql.DB, error)

// Option customizes a Store.
type Option func(*Store)

// WithOpener replaces the driver open call, mostly for tests.
func WithOpener(open Opener) Option {
	return func(s *Store) {
		s.open = open
	}
}

// WithMigrations replaces the embedded migration scripts.
func WithMigrations(fsys fs.FS) Option {
	return func(s *Store) {
		s.migrations = fsys
	}
}

// Store is the data access layer over the election database.
// It holds configuration only; every call opens and closes its own connection.
type Store struct {
	path        string
	params      url.Values
	dsnErr      error
	busyTimeout time.Duration
	open        Opener
	migrations  fs.FS
}

// New creates a store for the given configuration. No connection is opened.
// An unparsable DSN is reported as ErrConnectivity by every call.
func New(cfg Config, opts ...Option) *Store {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}

	s := &Store{
		path:        cfg.Path,
		params:      url.Values{},
		busyTimeout: cfg.BusyTimeout,
		open:        openSQLite,
		migrations:  migrations.FS,
	}

	if strings.TrimSpace(cfg.DSN) != "" {
		path, params, err := parseDSN(cfg.DSN)
		if err != nil {
			s.dsnErr = err
		} else {
			s.path = path
			s.params = params
		}
	}
	if s.path == "" {
		s.path = DefaultPath
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// parseDSN splits a connection string such as
// "jdbc:sqlite:/data/wahl.sql?_pragma=journal_mode(WAL)" into the file
// and its query parameters.
func parseDSN(dsn string) (string, url.Values, error) {
	dsn = strings.TrimPrefix(strings.TrimSpace(dsn), jdbcPrefix)
	dsn = strings.TrimPrefix(dsn, "file:")

	path, rawQuery, _ := strings.Cut(dsn, "?")
	if path == "" {
		return "", nil, fmt.Errorf("connection string %q names no database file", dsn)
	}

	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("connection string %q has invalid parameters: %w", dsn, err)
	}
	return path, params, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	return sql.Open("sqlite", dsn)
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// StoreExists reports whether the database file is present.
func (s *Store) StoreExists() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// connectionString returns the DSN for a call. create allows SQLite to
// create a missing file, which only Initialize needs. Configured
// parameters are kept except mode and foreign_keys, which the store owns.
func (s *Store) connectionString(create bool) string {
	params := url.Values{}
	var pragmas []string
	for key, values := range s.params {
		switch key {
		case "mode":
		case "_pragma":
			pragmas = values
		default:
			params[key] = append([]string(nil), values...)
		}
	}

	mode := "rw"
	if create {
		mode = "rwc"
	}
	params.Set("mode", mode)

	hasBusyTimeout := false
	for _, pragma := range pragmas {
		name := pragmaName(pragma)
		if name == "foreign_keys" {
			continue
		}
		if name == "busy_timeout" {
			hasBusyTimeout = true
		}
		params.Add("_pragma", pragma)
	}
	params.Add("_pragma", "foreign_keys(1)")
	if !hasBusyTimeout {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.busyTimeout.Milliseconds()))
	}

	return "file:" + s.path + "?" + params.Encode()
}

// pragmaName returns "busy_timeout" for "busy_timeout(5000)" or "busy_timeout=5000".
func pragmaName(pragma string) string {
	name := strings.ToLower(strings.TrimSpace(pragma))
	if i := strings.IndexAny(name, "(= "); i >= 0 {
		name = name[:i]
	}
	return name
}

// connect opens a fresh handle limited to a single connection so that
// pragmas and transactions share it.
func (s *Store) connect(create bool) (*sql.DB, error) {
	if s.dsnErr != nil {
		log.Error().Err(s.dsnErr).Msg("Invalid database connection string")
		return nil, fmt.Errorf("%w: %w", ErrConnectivity, s.dsnErr)
	}

	conn, err := s.open(s.connectionString(create))
	if err != nil {
		log.Error().Err(err).Str("path", s.path).Msg("Failed to open database")
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrConnectivity, err)
	}
	if conn == nil {
		log.Error().Str("path", s.path).Msg("Database driver returned no connection")
		return nil, fmt.Errorf("%w: no connection", ErrConnectivity)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		log.Error().Err(err).Str("path", s.path).Msg("Failed to reach database")
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrConnectivity, err)
	}

	return conn, nil
}

func (s *Store) release(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("Failed to close database connection")
	}
}

// withConn runs fn on a connection that is closed afterwards.
func (s *Store) withConn(fn func(*sql.DB) error) error {
	conn, err := s.connect(false)
	if err != nil {
		return err
	}
	defer s.release(conn)

	return fn(conn)
}

// transaction wraps fn in a transaction on its own connection. Any error
// from fn rolls back the whole transaction and is reported as ErrWrite.
func (s *Store) transaction(fn func(*sql.Tx) error) error {
	conn, err := s.connect(false)
	if err != nil {
		return err
	}
	defer s.release(conn)

	return runTx(conn, fn)
}

func runTx(conn *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrConnectivity, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrWrite, err)
	}

	return nil
}
