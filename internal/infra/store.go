package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/authstate/internal/config"
	"github.com/congo-pay/authstate/internal/kv"
)

// Backend is the opened key-value store plus the Redis client when the
// store is Redis-backed, so middleware can share the connection.
type Backend struct {
	Store kv.Store
	Redis *redis.Client
}

// Close releases the store's resources.
func (b Backend) Close() error {
	return kv.Close(b.Store)
}

// OpenStore connects the backend selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		if !cfg.IsDev() {
			logger.Warn("memory store selected outside development; auth state will not survive restarts",
				slog.String("env", cfg.AppEnv))
		}
		return Backend{Store: kv.NewMemory()}, nil
	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Store: kv.NewRedis(client), Redis: client}, nil
	case config.BackendPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return Backend{}, err
		}
		store := kv.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return Backend{}, err
		}
		return Backend{Store: store}, nil
	case config.BackendSQLite:
		store, err := kv.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Store: store}, nil
	case config.BackendFile:
		store, err := kv.NewFile(cfg.FileStorePath)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Store: store}, nil
	default:
		return Backend{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
