package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/logger"
)

// InitRedis connects to Redis and verifies the connection with a ping.
func InitRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Infow("Redis connected successfully", "addr", rdb.Options().Addr)
	return rdb, nil
}
