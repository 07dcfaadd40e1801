package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wahlprogramm/wahlprogramm/internal/config"
)

// DefaultLogFileName is the log file written next to the store.
const DefaultLogFileName = "wahlprogramm.log"

const timeFormat = "2006-01-02 15:04:05"

// Rotation controls when lumberjack rolls the log file over.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 30, Compress: true}
}

// RotationFromSettings overrides the defaults with the log.* settings of
// the store. Out of range values keep the default.
func RotationFromSettings(loader *config.Loader) Rotation {
	r := DefaultRotation()
	if v := loader.Int(config.KeyLogMaxSizeMB, r.MaxSizeMB); v > 0 {
		r.MaxSizeMB = v
	}
	if v := loader.Int(config.KeyLogMaxBackups, r.MaxBackups); v >= 0 {
		r.MaxBackups = v
	}
	if v := loader.Int(config.KeyLogMaxAgeDays, r.MaxAgeDays); v >= 0 {
		r.MaxAgeDays = v
	}
	r.Compress = loader.Bool(config.KeyLogCompress, r.Compress)
	return r
}

// Options configure the global logger.
type Options struct {
	Level    string
	File     string // empty means DefaultLogFileName in the working directory
	Rotation Rotation
	// Store is the database file every entry is tagged with.
	Store string
}

// Apply replaces the global logger: console on stderr plus a rotating
// plain-text file. If the file cannot be prepared, logging stays on the
// console and a warning is emitted.
func Apply(opts Options) {
	zerolog.SetGlobalLevel(parseLevel(opts.Level))

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}

	var out io.Writer = console
	file, fileErr := openLogFile(opts.File, opts.Rotation)
	if fileErr == nil {
		out = zerolog.MultiLevelWriter(console, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: timeFormat,
			NoColor:    true,
		})
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Store != "" {
		ctx = ctx.Str("store", opts.Store)
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Msg("Logging to console only")
	}
}

func openLogFile(path string, rotation Rotation) (*lumberjack.Logger, error) {
	if path == "" {
		path = DefaultLogFileName
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}, nil
}

// FileNextToStore returns DefaultLogFileName in the directory of storePath.
func FileNextToStore(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), DefaultLogFileName)
}

// LevelFromVerbosity maps a -v count onto a level name, falling back to
// the configured level when no flag was given.
func LevelFromVerbosity(verbosity int, configured string) string {
	switch {
	case verbosity >= 2:
		return "trace"
	case verbosity == 1:
		return "debug"
	case configured != "":
		return configured
	default:
		return "info"
	}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
