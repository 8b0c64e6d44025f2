// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, CORS, and request body limits.
// AppConfig is where everything specific to HouseKeeper lives: the
// MongoDB connection, session cookies, and the login lockout and
// rate-limit tuning.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: housekeeper-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Credential lockout configuration
	LockoutMaxAttempts int           // Consecutive failures before an account locks
	LockoutWindow      time.Duration // How long a locked account stays locked

	// Login rate limiting
	LoginIPLimit    int           // Login attempts allowed per IP per window
	LoginIPWindow   time.Duration // Sliding window for the per-IP limit
	LoginUserLimit  int           // Login attempts allowed per username per window
	LoginUserWindow time.Duration // Sliding window for the per-username limit
}
