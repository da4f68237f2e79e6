// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/runtracker/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the store is connected and
// before the HTTP handler is built: it applies the configured store
// deadlines and checks the store answers.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.timeoutConfig())
	cur := timeouts.Current()
	logger.Info("store timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("read", cur.Read),
		zap.Duration("query", cur.Query),
		zap.Duration("write", cur.Write),
		zap.Duration("sync", cur.Sync))

	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.Docs.Ping(pctx); err != nil {
		logger.Error("document store ping failed", zap.String("backend", deps.Backend), zap.Error(err))
		return err
	}
	return nil
}
