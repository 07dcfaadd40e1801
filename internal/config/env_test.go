package config

import (
	"os"
	"testing"
	"time"
)

// unsetEnv clears keys for the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	unsetEnv(t, "WAHL_DB_PATH", "WAHL_DATABASE", "WAHL_BUSY_TIMEOUT", "WAHL_LOG_LEVEL")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}

	if cfg.DBPath != "./wahlprogramm.db" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.BusyTimeout != 5*time.Second {
		t.Errorf("expected default busy timeout, got %v", cfg.BusyTimeout)
	}
	if cfg.LogLevel != "" {
		t.Errorf("expected log level to be unset, got %q", cfg.LogLevel)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("WAHL_DB_PATH", "/var/lib/wahl/wahl.db")
	t.Setenv("WAHL_DATABASE", "jdbc:sqlite:/var/lib/wahl/wahl.db")
	t.Setenv("WAHL_BUSY_TIMEOUT", "250ms")
	t.Setenv("WAHL_PASSWORD_SALT", "pepper")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv returned error: %v", err)
	}

	if cfg.DBPath != "/var/lib/wahl/wahl.db" {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Database != "jdbc:sqlite:/var/lib/wahl/wahl.db" {
		t.Errorf("unexpected connection string %q", cfg.Database)
	}
	if cfg.BusyTimeout != 250*time.Millisecond {
		t.Errorf("unexpected busy timeout %v", cfg.BusyTimeout)
	}
	if cfg.PasswordSalt != "pepper" {
		t.Errorf("unexpected salt %q", cfg.PasswordSalt)
	}
}

func TestLoadEnv_InvalidDuration(t *testing.T) {
	t.Setenv("WAHL_BUSY_TIMEOUT", "soon")

	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
