package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"winelist/internal/config"
)

// DSN builds a postgres:// URL from the config, escaping credentials and database name.
func DSN(cfg config.DBConfig) string {
	userInfo := url.UserPassword(cfg.User, cfg.Password)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		cfg.Port,
		url.PathEscape(cfg.Database),
	)
}

func Connect(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	return ConnectDSN(ctx, DSN(cfg), log)
}

func ConnectDSN(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	// One document, few writers: a small pool is plenty.
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	log.Info("connecting to database",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.Uint16("port", poolConfig.ConnConfig.Port),
		zap.String("database", poolConfig.ConnConfig.Database),
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection pool established")
	return pool, nil
}
