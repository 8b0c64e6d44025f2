// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("housekeeper starting",
		zap.String("env", coreCfg.Env),
		zap.Int("lockout_max_attempts", appCfg.LockoutMaxAttempts),
		zap.Duration("lockout_window", appCfg.LockoutWindow))
	return nil
}
