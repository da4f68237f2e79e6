// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/backends"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the run tracker.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, store_backend, etc.
//   - Environment variables: RUNTRACKER_MONGO_URI, RUNTRACKER_STORE_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --store_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: "mongo", Desc: "Document store: 'mongo', 'sqlite' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "runtracker", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "sqlite_path", Default: "runtracker.db", Desc: "SQLite file for the sqlite backend"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "runtracker-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "identity_header", Default: "", Desc: "Trusted upstream header carrying the user id (e.g. X-Forwarded-User)"},
	{Name: "identity_email_header", Default: "", Desc: "Trusted upstream header carrying the user email"},
	{Name: "identity_name_header", Default: "", Desc: "Trusted upstream header carrying the display name"},
	{Name: "device_id", Default: "", Desc: "Fixed user id for single-device installs"},

	{Name: "timezone", Default: "Local", Desc: "IANA time zone that decides the current day"},
	{Name: "recent_reports_limit", Default: streaksync.DefaultRecentLimit, Desc: "Recent reports shown on the dashboard"},
	{Name: "retry_attempts", Default: streaksync.DefaultAttempts, Desc: "Attempts per store read on transient failure"},
	{Name: "retry_base", Default: streaksync.DefaultRetryBase.String(), Desc: "First retry backoff (doubles each retry)"},

	{Name: "timeout_ping", Default: timeouts.DefaultPing.String(), Desc: "Health check ping deadline"},
	{Name: "timeout_read", Default: timeouts.DefaultRead.String(), Desc: "Single document read deadline"},
	{Name: "timeout_query", Default: timeouts.DefaultQuery.String(), Desc: "Report listing deadline"},
	{Name: "timeout_write", Default: timeouts.DefaultWrite.String(), Desc: "Write deadline"},
	{Name: "timeout_sync", Default: timeouts.DefaultSync.String(), Desc: "Whole streak operation deadline"},

	{Name: "write_rate_limit", Default: 60, Desc: "Changes allowed per caller per write_rate_window (0 disables)"},
	{Name: "write_rate_window", Default: "1m", Desc: "Window for write_rate_limit"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics on /metrics"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// RUNTRACKER_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RUNTRACKER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SQLitePath:       appValues.String("sqlite_path"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		IdentityHeader:      appValues.String("identity_header"),
		IdentityEmailHeader: appValues.String("identity_email_header"),
		IdentityNameHeader:  appValues.String("identity_name_header"),
		DeviceID:            strings.TrimSpace(appValues.String("device_id")),

		Timezone:           appValues.String("timezone"),
		RecentReportsLimit: appValues.Int("recent_reports_limit"),
		RetryAttempts:      appValues.Int("retry_attempts"),
		RetryBase:          appValues.Duration("retry_base", streaksync.DefaultRetryBase),

		TimeoutPing:  appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutRead:  appValues.Duration("timeout_read", timeouts.DefaultRead),
		TimeoutQuery: appValues.Duration("timeout_query", timeouts.DefaultQuery),
		TimeoutWrite: appValues.Duration("timeout_write", timeouts.DefaultWrite),
		TimeoutSync:  appValues.Duration("timeout_sync", timeouts.DefaultSync),

		WriteRateLimit:  appValues.Int("write_rate_limit"),
		WriteRateWindow: appValues.Duration("write_rate_window", time.Minute),

		MetricsEnabled: appValues.Bool("metrics_enabled"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It checks the backend choice, the MongoDB URI format when Mongo is
// used, the timezone, the retry settings, and refuses the development
// session key in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateApp(coreCfg.Env, appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

func validateApp(env string, appCfg AppConfig) error {
	if err := appCfg.storeConfig().Validate(); err != nil {
		return err
	}
	if appCfg.StoreBackend == backends.Mongo {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	if _, err := appCfg.location(); err != nil {
		return err
	}

	if appCfg.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", appCfg.RetryAttempts)
	}
	if appCfg.RecentReportsLimit < 1 {
		return fmt.Errorf("recent_reports_limit must be at least 1, got %d", appCfg.RecentReportsLimit)
	}

	if appCfg.WriteRateLimit < 0 {
		return fmt.Errorf("write_rate_limit must not be negative, got %d", appCfg.WriteRateLimit)
	}
	if appCfg.WriteRateLimit > 0 && appCfg.WriteRateWindow <= 0 {
		return fmt.Errorf("write_rate_window must be positive when write_rate_limit is set")
	}

	if env == "prod" {
		if appCfg.SessionKey == "" || appCfg.SessionKey == devSessionKey {
			return fmt.Errorf("session_key must be set to a strong secret in production")
		}
		if appCfg.StoreBackend == backends.Memory {
			return fmt.Errorf("the memory store backend is not allowed in production")
		}
	}
	return nil
}

func (c AppConfig) storeConfig() backends.Config {
	return backends.Config{
		Backend:          c.StoreBackend,
		MongoURI:         c.MongoURI,
		MongoDatabase:    c.MongoDatabase,
		MongoMaxPoolSize: c.MongoMaxPoolSize,
		SQLitePath:       c.SQLitePath,
	}
}

func (c AppConfig) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c AppConfig) timeoutConfig() timeouts.Config {
	return timeouts.Config{
		Ping:  c.TimeoutPing,
		Read:  c.TimeoutRead,
		Query: c.TimeoutQuery,
		Write: c.TimeoutWrite,
		Sync:  c.TimeoutSync,
	}
}
