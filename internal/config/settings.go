package config

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Keys of the settings table read at startup.
const (
	KeyLogLevel      = "log.level"
	KeyLogMaxSizeMB  = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAgeDays = "log.max_age_days"
	KeyLogCompress   = "log.compress"
)

// SettingsGetter reads one stored setting. Unknown keys yield "".
type SettingsGetter interface {
	GetSetting(key string) (string, error)
}

// Loader reads typed values from the settings table of the store.
// Missing, unreadable or malformed values fall back to the caller's
// default. A nil *Loader returns defaults for every key, which is what
// callers use before the store has been initialized.
type Loader struct {
	store SettingsGetter
}

func NewLoader(store SettingsGetter) *Loader {
	return &Loader{store: store}
}

func (l *Loader) lookup(key string) (string, bool) {
	if l == nil || l.store == nil {
		return "", false
	}

	val, err := l.store.GetSetting(key)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Stored setting unavailable, using default")
		return "", false
	}

	val = strings.TrimSpace(val)
	return val, val != ""
}

// Int returns the setting as an integer.
func (l *Loader) Int(key string, defaultVal int) int {
	val, ok := l.lookup(key)
	if !ok {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("Ignoring stored setting that is not a number")
		return defaultVal
	}
	return n
}

// Bool returns the setting parsed by strconv.ParseBool ("1", "true", "FALSE", ...).
func (l *Loader) Bool(key string, defaultVal bool) bool {
	val, ok := l.lookup(key)
	if !ok {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Warn().Str("key", key).Str("value", val).Msg("Ignoring stored setting that is not a boolean")
		return defaultVal
	}
	return b
}

func (l *Loader) String(key, defaultVal string) string {
	if val, ok := l.lookup(key); ok {
		return val
	}
	return defaultVal
}
