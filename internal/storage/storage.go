// Package storage opens the book store selected by configuration.
package storage

import (
	"context"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Open connects the configured store and returns it with its close func.
// A failed ping is logged but not returned; requests then fail at the store.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (book.Repository, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return book.NewMemoryRepo(), func() {}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		repo := book.NewRedisRepo(client, cfg.RedisPrefix, cfg.StoreTimeout)
		logPing(ctx, logger, repo, zap.String("addr", cfg.RedisAddr))
		return repo, func() { _ = client.Close() }, nil

	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		repo := book.NewPostgresRepo(pool, cfg.StoreTimeout)
		logPing(ctx, logger, repo, zap.String("dsn", config.RedactDSN(cfg.DatabaseDSN)))
		return repo, pool.Close, nil
	}
}

func logPing(ctx context.Context, logger *zap.Logger, repo book.Repository, target zap.Field) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		logger.Error("store connection failed", target, zap.Error(err))
		return
	}
	logger.Info("store connection successful", target)
}
