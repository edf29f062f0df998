// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the store is ready and before
// the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}
	if appCfg.LockWait > 0 {
		timeouts.Configure(timeouts.Config{LockWait: appCfg.LockWait})
	}
	logger.Info("quickmatch starting",
		zap.String("backend", deps.Backend),
		zap.Duration("lock_wait", timeouts.LockWait()))
	return nil
}
