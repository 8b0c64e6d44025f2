// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for HouseKeeper.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: HOUSEKEEPER_MONGO_URI, HOUSEKEEPER_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "house_keeper", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "housekeeper-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Credential lockout
	{Name: "lockout_max_attempts", Default: 5, Desc: "Consecutive failed logins before an account locks"},
	{Name: "lockout_window", Default: "10m", Desc: "How long a locked account stays locked (e.g., 10m, 1h)"},

	// Login rate limiting
	{Name: "login_ip_limit", Default: 10, Desc: "Login attempts allowed per IP per window"},
	{Name: "login_ip_window", Default: "1m", Desc: "Sliding window for the per-IP login limit"},
	{Name: "login_user_limit", Default: 5, Desc: "Login attempts allowed per username per window"},
	{Name: "login_user_window", Default: "5m", Desc: "Sliding window for the per-username login limit"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HOUSEKEEPER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		// Credential lockout
		LockoutMaxAttempts: appValues.Int("lockout_max_attempts"),
		LockoutWindow:      appValues.Duration("lockout_window", 10*time.Minute),

		// Login rate limiting
		LoginIPLimit:    appValues.Int("login_ip_limit"),
		LoginIPWindow:   appValues.Duration("login_ip_window", time.Minute),
		LoginUserLimit:  appValues.Int("login_user_limit"),
		LoginUserWindow: appValues.Duration("login_user_window", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// HouseKeeper validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and rejects lockout and
// rate-limit settings that would disable the guards entirely.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.LockoutMaxAttempts < 1 {
		return fmt.Errorf("lockout_max_attempts must be at least 1, got %d", appCfg.LockoutMaxAttempts)
	}
	if appCfg.LockoutWindow <= 0 {
		return fmt.Errorf("lockout_window must be positive, got %s", appCfg.LockoutWindow)
	}
	if appCfg.LoginIPLimit < 1 || appCfg.LoginUserLimit < 1 {
		return fmt.Errorf("login rate limits must be at least 1")
	}

	return nil
}
