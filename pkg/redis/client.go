package redis

import (
	"github.com/redis/go-redis/v9"

	"github.com/domo-app/domo-server/config"
)

// NewClient builds the shared redis client. Callers own the handle;
// there is no package-level global.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
