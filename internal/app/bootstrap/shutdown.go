// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/runtracker/internal/app/store/backends"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the document store.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("closing document store", zap.String("backend", deps.Backend))
	opened := backends.Opened{
		Name:          deps.Backend,
		Docs:          deps.Docs,
		MongoClient:   deps.MongoClient,
		MongoDatabase: deps.MongoDatabase,
	}
	if err := opened.Close(ctx); err != nil {
		logger.Error("document store close failed", zap.Error(err))
		return err
	}
	return nil
}
