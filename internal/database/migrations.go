package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	migrations := []string{
		createDocumentsTable,
		createDocumentSnapshotsTable,
	}

	for i, migration := range migrations {
		log.Debug("running migration", zap.Int("step", i+1), zap.Int("total", len(migrations)))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("all migrations completed successfully")
	return nil
}

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  body JSON NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createDocumentSnapshotsTable = `
CREATE TABLE IF NOT EXISTS document_snapshots (
  id UUID PRIMARY KEY,
  reason TEXT NOT NULL,
  body JSON NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_document_snapshots_created_at ON document_snapshots(created_at);
`
