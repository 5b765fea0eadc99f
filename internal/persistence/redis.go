package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldops/deployment-service/internal/config"
)

// Redis holds the client backing the authorization scope cache. The cache
// is advisory: when redis is down, scope resolution falls back to registry
// queries instead of failing requests, so an unreachable server only costs
// latency.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and probes it once. Connectivity problems are
// logged, not fatal.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	r := &Redis{Client: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}

	if err := r.Ping(context.Background()); err != nil {
		logger.Warn("redis unreachable, scope cache disabled until it recovers",
			zap.String("addr", cfg.Addr), zap.Error(err))
		return r
	}
	logger.Info("redis scope cache ready", zap.String("addr", cfg.Addr))
	return r
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies connectivity; the readiness probe uses it.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
