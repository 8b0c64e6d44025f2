// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/housekeeper/internal/app/features/accounts"
	healthfeature "github.com/dalemusser/housekeeper/internal/app/features/health"
	householdfeature "github.com/dalemusser/housekeeper/internal/app/features/household"
	townhallfeature "github.com/dalemusser/housekeeper/internal/app/features/townhall"
	"github.com/dalemusser/housekeeper/internal/app/household"
	activitystore "github.com/dalemusser/housekeeper/internal/app/store/activities"
	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	invitationstore "github.com/dalemusser/housekeeper/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/auth"
	"github.com/dalemusser/housekeeper/internal/app/system/authgate"
	"github.com/dalemusser/housekeeper/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// HouseKeeper wires the stores into the household core, applies session
// middleware globally, and mounts the account routes publicly while the
// household and town-hall routes require a signed-in user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores over the shared database.
	users := userstore.New(deps.MongoDatabase)
	households := householdstore.New(deps.MongoDatabase)
	memberships := membershipstore.New(deps.MongoDatabase)
	invitations := invitationstore.New(deps.MongoDatabase)
	activities := activitystore.New(deps.MongoDatabase)

	// Household core: context resolution, activity recording, and the
	// registry/ledger that enforce the membership and invitation rules.
	resolver := household.NewResolver(memberships, households, users, logger)
	recorder := household.NewRecorder(activities)
	registry := household.NewRegistry(deps.MongoClient, households, memberships, users, resolver, recorder, logger)
	ledger := household.NewLedger(deps.MongoClient, users, households, memberships, invitations, resolver, recorder, logger)

	// Credential gate with the configured lockout policy.
	gate := authgate.New(users, logger,
		authgate.WithLockout(appCfg.LockoutMaxAttempts, appCfg.LockoutWindow))

	limiter := ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginIPWindow,
		appCfg.LoginUserLimit, appCfg.LoginUserWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration, login, and logout
	accountsHandler := accountsfeature.NewHandler(gate, sessionMgr, limiter, logger)
	r.Mount("/accounts", accountsfeature.Routes(accountsHandler))

	// Everything household-scoped requires a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		householdHandler := householdfeature.NewHandler(registry, ledger, logger)
		r.Mount("/household", householdfeature.Routes(householdHandler))

		townhallHandler := townhallfeature.NewHandler(resolver, recorder, logger)
		r.Mount("/townhall", townhallfeature.Routes(townhallHandler))
	})

	return r, nil
}
