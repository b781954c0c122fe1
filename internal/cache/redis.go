// Package cache provides Redis-backed implementations of the crawl record
// and rate limit stores, for deployments that run without PostgreSQL.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes for crawler state in Redis.
const (
	recordKeyPrefix  = "threadcrawl:record:"
	rateLimitKey     = "threadcrawl:ratelimit"
	defaultDialWait  = 5 * time.Second
	defaultRedisPort = "6379"
)

// Config holds Redis connection settings.
type Config struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     string `mapstructure:"port"     yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db"       yaml:"db"`
}

// NewConfig returns a config populated with local development defaults.
func NewConfig() Config {
	return Config{
		Host: "localhost",
		Port: defaultRedisPort,
	}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialWait)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
