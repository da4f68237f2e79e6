// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They are *app-level*
// settings; ports, TLS, log level and CORS live in WAFFLE's CoreConfig.
type AppConfig struct {
	// Document store
	StoreBackend     string // mongo, sqlite or memory
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	SQLitePath       string // SQLite file for the sqlite backend

	// Session cookie holding the per-browser device id
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name (default: runtracker-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Identity resolution
	IdentityHeader      string // Header set by a trusted upstream proxy (blank disables)
	IdentityEmailHeader string
	IdentityNameHeader  string
	DeviceID            string // Fixed identity for single-device installs

	// Streak synchronizer
	Timezone           string // IANA zone deciding what "today" is
	RecentReportsLimit int
	RetryAttempts      int
	RetryBase          time.Duration

	// Store deadlines
	TimeoutPing  time.Duration
	TimeoutRead  time.Duration
	TimeoutQuery time.Duration
	TimeoutWrite time.Duration
	TimeoutSync  time.Duration

	// Per-caller limit on state-changing requests
	WriteRateLimit  int
	WriteRateWindow time.Duration

	MetricsEnabled bool
}
