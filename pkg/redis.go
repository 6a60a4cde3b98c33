package pkg

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spk-college/techfest-service/internal/config"
)

// NewRedisClient connects to Redis. On failure it returns nil instead of an
// error: the cache layer treats a nil client as "cache disabled" and every
// read falls through to Postgres.
func NewRedisClient(cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", cfg.Addr)
	return client
}
