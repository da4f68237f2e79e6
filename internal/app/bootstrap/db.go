// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/runtracker/internal/app/store/backends"
	"github.com/dalemusser/runtracker/internal/app/system/indexes"
	"github.com/dalemusser/runtracker/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB opens the configured document store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opened, err := backends.Open(ctx, appCfg.storeConfig(), logger)
	if err != nil {
		logger.Error("document store connect failed",
			zap.String("backend", appCfg.StoreBackend),
			zap.Error(err))
		return DBDeps{}, err
	}
	return DBDeps{
		Backend:       opened.Name,
		Docs:          opened.Docs,
		MongoClient:   opened.MongoClient,
		MongoDatabase: opened.MongoDatabase,
	}, nil
}

// EnsureSchema creates the Mongo collections with their validators, then
// the indexes. The sqlite backend migrates its schema when opened and
// the memory backend has none.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
