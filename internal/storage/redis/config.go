package redis

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config covers both stores Redis can back: accounts and per-user game state
type Config struct {
	// URL in redis:// or rediss:// form, database number included
	URL string

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration

	// GameTTL expires game state nobody has touched for this long.
	// Accounts never expire.
	GameTTL time.Duration

	// MaxUpdateRetries caps WATCH retries when one user plays from several tabs
	MaxUpdateRetries int
}

func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		DialTimeout:      5 * time.Second,
		GameTTL:          24 * time.Hour,
		MaxUpdateRetries: 100,
	}
}

// options turns the config into client options
func (c Config) options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, errors.New("redis: URL is required")
	}
	if c.MaxUpdateRetries < 1 {
		return nil, fmt.Errorf("redis: MaxUpdateRetries must be positive, got %d", c.MaxUpdateRetries)
	}
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse URL: %w", err)
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	opts.MinIdleConns = c.MinIdleConns
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	return opts, nil
}
