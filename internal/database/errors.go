package database

import "errors"

// Error kinds returned by Store. Callers match them with errors.Is.
var (
	// ErrConnectivity means the store could not be opened or used.
	ErrConnectivity = errors.New("database unreachable")
	// ErrWrite means an insert, delete or commit failed and nothing was applied.
	ErrWrite = errors.New("database write failed")
	// ErrMigration means the schema could not be brought to the latest version.
	ErrMigration = errors.New("database migration failed")
)
