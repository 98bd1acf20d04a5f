package redisinfra

import (
	"github.com/go-otp-auth/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a go-redis client from config.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
