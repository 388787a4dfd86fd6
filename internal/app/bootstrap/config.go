// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/whoseturn/internal/app/rotation"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	minSessionKey = 32
)

// appConfigKeys defines the configuration keys for WhoseTurn.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: WHOSETURN_MONGO_URI, WHOSETURN_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "storage_type", Default: StorageMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "whoseturn", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "whoseturn-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL, used for the OAuth callback"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (blank disables Google sign-in)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Rotation behavior
	{Name: "delete_policy", Default: string(rotation.DeleteByCreator), Desc: "Who may delete a group: 'creator' or 'any'"},
	{Name: "dedup_window", Default: "5m", Desc: "Suppress repeated group notifications with the same message inside this window"},

	// Background work
	{Name: "notification_poll_interval", Default: "5s", Desc: "Unread-count poll interval for the notification stream"},
	{Name: "oauth_cleanup_interval", Default: "1h", Desc: "How often expired OAuth states are removed"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig reads .env files, config files,
// WAFFLE_* / WHOSETURN_* environment variables and command-line flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "WHOSETURN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StorageType:      appValues.String("storage_type"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		DeletePolicy: appValues.String("delete_policy"),
		DedupWindow:  appValues.Duration("dedup_window", 5*time.Minute),

		NotificationPollInterval: appValues.Duration("notification_poll_interval", 5*time.Second),
		OAuthCleanupInterval:     appValues.Duration("oauth_cleanup_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Storage, delete policy and the Mongo URI are checked here so typos fail
// before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StorageType {
	case StorageMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when storage_type is %q", StorageMongo)
		}
	case StorageMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		return fmt.Errorf("unknown storage_type %q (want %q or %q)", appCfg.StorageType, StorageMongo, StorageMemory)
	}

	if _, err := rotation.ParseDeletePolicy(appCfg.DeletePolicy); err != nil {
		return err
	}

	if len(appCfg.SessionKey) < minSessionKey {
		return fmt.Errorf("session_key must be at least %d bytes", minSessionKey)
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed from the development default in prod")
	}

	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_secret is required when google_client_id is set")
	}

	return nil
}
