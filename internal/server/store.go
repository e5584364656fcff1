package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"winelist/internal/config"
	"winelist/internal/database"
	"winelist/internal/repositories"
)

// OpenStore opens the configured document store, running migrations for postgres.
// The caller owns the returned repository and must Close it.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.DocumentRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := database.Connect(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		return repositories.NewPostgresDocumentRepository(pool), nil
	case config.StoreDriverFile:
		log.Info("using file store", zap.String("path", cfg.Store.File))
		return repositories.NewFileDocumentRepository(cfg.Store.File), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
