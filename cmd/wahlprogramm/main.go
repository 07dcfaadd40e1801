package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wahlprogramm/wahlprogramm/internal/config"
	"github.com/wahlprogramm/wahlprogramm/internal/credentials"
	"github.com/wahlprogramm/wahlprogramm/internal/database"
	"github.com/wahlprogramm/wahlprogramm/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds flag values and the collaborators built from them.
type app struct {
	dbPath    string
	dsn       string
	verbosity int

	store   *database.Store
	encoder *credentials.Encoder
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "wahlprogramm",
		Short: "Wahlprogramm - election data management",
		Long:  `Wahlprogramm manages users, candidates and role nominations per section in a local SQLite store.`,
	}
	rootCmd.SilenceUsage = true
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	rootCmd.PersistentFlags().StringVarP(&a.dbPath, "db", "d", "", "SQLite database path (or set WAHL_DB_PATH env var)")
	rootCmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "Connection string whose file replaces --db, e.g. jdbc:sqlite:/data/wahl.sql (or set WAHL_DATABASE env var)")
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.AddCommand(
		a.initCmd(),
		a.existsCmd(),
		a.userCmd(),
		a.candidateCmd(),
		a.assignCmd(),
		a.clearCmd(),
		a.assignmentsCmd(),
		a.rolesCmd(),
		a.sectionsCmd(),
		a.gendersCmd(),
		a.settingCmd(),
		a.maintenanceCmd(),
		versionCmd(),
	)

	return rootCmd
}

// versionCmd needs no configuration, so it replaces the root's setup hook.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Show version information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wahlprogramm %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// setup resolves configuration (flags over env), configures logging and
// builds the store.
func (a *app) setup(cmd *cobra.Command) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	if a.dbPath == "" {
		a.dbPath = env.DBPath
	}
	if a.dsn == "" {
		a.dsn = env.Database
	}

	a.store = database.New(database.Config{
		Path:        a.dbPath,
		DSN:         a.dsn,
		BusyTimeout: env.BusyTimeout,
	})
	a.encoder = credentials.NewEncoder(env.PasswordSalt)

	// Reading settings from a missing store would fail on every key; a nil
	// loader yields defaults.
	var loader *config.Loader
	if a.store.StoreExists() {
		loader = config.NewLoader(a.store)
	}

	level := env.LogLevel
	if level == "" {
		level = loader.String(config.KeyLogLevel, "")
	}

	logFile := env.LogFile
	if logFile == "" {
		logFile = logging.FileNextToStore(a.store.Path())
	}

	logging.Apply(logging.Options{
		Level:    logging.LevelFromVerbosity(a.verbosity, level),
		File:     logFile,
		Rotation: logging.RotationFromSettings(loader),
		Store:    a.store.Path(),
	})

	log.Debug().
		Str("version", version).
		Str("command", cmd.CommandPath()).
		Msg("Starting Wahlprogramm")

	return nil
}

// degrade turns an unreachable store into an empty listing.
func degrade(err error) error {
	if errors.Is(err, database.ErrConnectivity) {
		log.Error().Err(err).Msg("Database unreachable, showing no results")
		return nil
	}
	return err
}
