package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/backends"
	reportstore "github.com/dalemusser/runtracker/internal/app/store/reports"
	userstore "github.com/dalemusser/runtracker/internal/app/store/users"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/domain/calendar"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// envPrefix matches the server's configuration prefix so one .env file
// serves both.
const envPrefix = "RUNTRACKER_"

var (
	flagEnvFile    string
	flagBackend    string
	flagMongoURI   string
	flagMongoDB    string
	flagSQLitePath string
	flagTimezone   string
	flagLogFile    string
	flagNow        string
	flagUser       string
	flagMonth      string
	flagJSON       bool
	flagFormat     string
)

var rootCmd = &cobra.Command{
	Use:           "runtrackerctl",
	Short:         "Inspect and recalculate run tracker streaks",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagEnvFile == "" {
			return nil
		}
		if err := godotenv.Load(flagEnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", flagEnvFile, err)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEnvFile, "env-file", "", "read RUNTRACKER_* settings from this .env file")
	pf.StringVar(&flagBackend, "backend", "", "store backend: "+strings.Join(backends.Names, ", ")+" (env RUNTRACKER_STORE_BACKEND, default mongo)")
	pf.StringVar(&flagMongoURI, "mongo-uri", "", "MongoDB connection string (env RUNTRACKER_MONGO_URI)")
	pf.StringVar(&flagMongoDB, "mongo-db", "", "MongoDB database name (env RUNTRACKER_MONGO_DATABASE, default runtracker)")
	pf.StringVar(&flagSQLitePath, "sqlite-path", "", "SQLite database file (env RUNTRACKER_SQLITE_PATH)")
	pf.StringVar(&flagTimezone, "tz", "", "IANA zone that decides calendar days (env RUNTRACKER_TIMEZONE, default Local)")
	pf.StringVar(&flagLogFile, "log-file", "", "also write JSON logs to this rotating file")
	pf.StringVar(&flagNow, "now", "", "evaluate as of this RFC3339 time instead of the clock")
	pf.StringVar(&flagUser, "user", "", "user id to act on")

	rootCmd.AddCommand(recalcCmd, calendarCmd, statsCmd, exportCmd)
}

// setting resolves a value from its flag, then the environment, then def.
func setting(cmd *cobra.Command, flag, env, def string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if v := os.Getenv(envPrefix + env); v != "" {
		return v
	}
	return def
}

// session is an open store plus the services the commands use.
type session struct {
	opened  backends.Opened
	sync    *streaksync.Synchronizer
	users   *userstore.Store
	reports *reportstore.Store
	log     *zap.Logger
	loc     *time.Location
	now     time.Time

	closeLog func() error
}

func openSession(cmd *cobra.Command) (*session, error) {
	if flagUser == "" {
		return nil, fmt.Errorf("--user is required")
	}

	loc, err := loadLocation(setting(cmd, "tz", "TIMEZONE", "Local"))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if flagNow != "" {
		now, err = time.Parse(time.RFC3339, flagNow)
		if err != nil {
			return nil, fmt.Errorf("bad --now: %w", err)
		}
	}

	logger, closeLog := newLogger(cmd.ErrOrStderr(), flagLogFile)

	cfg := backends.Config{
		Backend:       setting(cmd, "backend", "STORE_BACKEND", backends.Mongo),
		MongoURI:      setting(cmd, "mongo-uri", "MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: setting(cmd, "mongo-db", "MONGO_DATABASE", "runtracker"),
		SQLitePath:    setting(cmd, "sqlite-path", "SQLITE_PATH", ""),
	}
	opened, err := backends.Open(cmd.Context(), cfg, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	logger.Debug("store opened", zap.String("backend", opened.Name))

	fixed := now
	return &session{
		opened: opened,
		sync: streaksync.New(opened.Docs, logger,
			streaksync.WithClock(func() time.Time { return fixed }),
			streaksync.WithLocation(loc),
		),
		users:    userstore.New(opened.Docs),
		reports:  reportstore.New(opened.Docs),
		log:      logger,
		loc:      loc,
		now:      now.In(loc),
		closeLog: closeLog,
	}, nil
}

func (s *session) Close(cmd *cobra.Command) {
	if err := s.opened.Close(cmd.Context()); err != nil {
		s.log.Warn("close store", zap.Error(err))
	}
	_ = s.log.Sync()
	_ = s.closeLog()
}

func (s *session) user() streaksync.User {
	return streaksync.User{ID: flagUser}
}

// month is --month, or the current month.
func (s *session) month() (calendar.Month, error) {
	if flagMonth == "" {
		return calendar.Of(s.now), nil
	}
	return calendar.Parse(flagMonth)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", name, err)
	}
	return loc, nil
}
