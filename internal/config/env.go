package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from environment variables.
// Command line flags take precedence over these values.
type Env struct {
	// DBPath is the SQLite file the store lives in.
	DBPath string `env:"WAHL_DB_PATH" envDefault:"./wahlprogramm.db"`

	// Database is the resolved connection string. Empty means build one
	// from DBPath. A "jdbc:sqlite:" prefix is accepted.
	Database string `env:"WAHL_DATABASE"`

	// BusyTimeout is how long SQLite waits for a locked file.
	BusyTimeout time.Duration `env:"WAHL_BUSY_TIMEOUT" envDefault:"5s"`

	// LogLevel overrides the stored log.level setting. Empty means unset.
	LogLevel string `env:"WAHL_LOG_LEVEL"`
	LogFile  string `env:"WAHL_LOG_FILE"`

	// PasswordSalt feeds the credential encoder. Changing it invalidates
	// every stored password.
	PasswordSalt string `env:"WAHL_PASSWORD_SALT" envDefault:"wahlprogramm"`
}

// LoadEnv parses Env from the environment.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
