// Package rds provides a small Redis client over go-redis for whole-document state
package rds

import (
	"context"
	"errors"
	"time"

	perr "shamewizard/internal/platform/errors"

	"github.com/redis/go-redis/v9"
)

// Config configures the redis client
type Config struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds the initial ping, default 5s
	DialTimeout time.Duration
}

// Client wraps a go-redis client with project error mapping
type Client struct {
	C redis.UniversalClient
}

var newClient = func(o *redis.Options) redis.UniversalClient { return redis.NewClient(o) }

// Open connects and pings once so misconfiguration fails at boot
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, perr.InvalidArgf("redis: addr is required")
	}
	dt := cfg.DialTimeout
	if dt <= 0 {
		dt = 5 * time.Second
	}
	c := &Client{C: newClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dt,
	})}

	pctx, cancel := context.WithTimeout(ctx, dt)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Get returns the raw value at key, or a NotFound error when missing
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.C.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "redis: key %s not found", key)
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "redis: get %s", key)
	}
	return b, nil
}

// Set stores val at key with no expiry
func (c *Client) Set(ctx context.Context, key string, val []byte) error {
	if err := c.C.Set(ctx, key, val, 0).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "redis: set %s", key)
	}
	return nil
}

// Ping reports readiness
func (c *Client) Ping(ctx context.Context) error {
	if err := c.C.Ping(ctx).Err(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "redis: ping")
	}
	return nil
}

// Close releases the connection pool
func (c *Client) Close() error {
	if c == nil || c.C == nil {
		return nil
	}
	return c.C.Close()
}
