// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); AppConfig
// carries everything WhoseTurn itself needs.
type AppConfig struct {
	// Storage backend: "mongo" or "memory"
	StorageType string

	// MongoDB connection configuration (only used if StorageType is "mongo")
	MongoURI         string // e.g., mongodb://localhost:27017
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: whoseturn-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Base URL used to build the OAuth callback, e.g., "https://whoseturn.example"
	BaseURL string

	// Google OAuth; the hosted provider is disabled when the client id is blank
	GoogleClientID     string
	GoogleClientSecret string

	// Rotation behavior
	DeletePolicy string        // "creator" or "any"
	DedupWindow  time.Duration // same group+message suppression window

	// Background work
	NotificationPollInterval time.Duration // server-side poll for /notifications/stream
	OAuthCleanupInterval     time.Duration // expired OAuth state sweep
}
