// Package cache keeps short-lived markers in Redis: revoked session tokens
// until they expire and appointments already reminded.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/psycontrol/internal/config"
)

const (
	revokedPrefix  = "revoked:"
	remindedPrefix = "reminded:"
)

// Cache is a thin wrapper over a Redis client.
type Cache struct {
	Db *redis.Client
}

// InitServer connects to Redis and checks the connection.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Revoke marks the token id as revoked for ttl. A non-positive ttl means the
// token has already expired and nothing is stored.
func (c *Cache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	const op = "cache.Revoke"
	if ttl <= 0 {
		return nil
	}
	if err := c.Db.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsRevoked reports whether the token id was revoked and has not expired yet.
func (c *Cache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const op = "cache.IsRevoked"
	err := c.Db.Get(ctx, revokedPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// MarkReminded records that a reminder for the appointment was queued. It
// reports false when the appointment was already marked.
func (c *Cache) MarkReminded(ctx context.Context, appointmentID int64, ttl time.Duration) (bool, error) {
	const op = "cache.MarkReminded"
	ok, err := c.Db.SetNX(ctx, remindedPrefix+strconv.FormatInt(appointmentID, 10), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// ForgetReminded drops the marker so the next sweep retries the appointment.
func (c *Cache) ForgetReminded(ctx context.Context, appointmentID int64) error {
	const op = "cache.ForgetReminded"
	if err := c.Db.Del(ctx, remindedPrefix+strconv.FormatInt(appointmentID, 10)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx).Err()
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.Db.Close()
}
