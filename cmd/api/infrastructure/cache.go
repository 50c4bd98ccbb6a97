package infrastructure

import (
	"context"

	"go.uber.org/zap"

	"user-crud-service/internal/config"
	redisclient "user-crud-service/pkg/redis"
)

// NewRedisClient connects to Redis when it is enabled. Redis is optional:
// a failed connection is logged and nil is returned so the service runs
// without caching or rate limiting.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) *redisclient.Client {
	if !cfg.Redis.Enabled {
		l.Info("redis disabled, running without cache and rate limiting")
		return nil
	}

	redisConfig := redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		MinIdleConn: cfg.Redis.MinIdleConn,
	}

	rdb, err := redisclient.NewClient(ctx, redisConfig, l)
	if err != nil {
		l.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
		return nil
	}

	return rdb
}
