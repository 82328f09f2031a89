// Package cache keeps short-lived auth state in Redis: revoked token ids
// and per-user revocation timestamps.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/finsave/internal/config"
)

// Cache is a JSON value store on top of a Redis client.
type Cache struct {
	Db *redis.Client
}

// InitServer connects to Redis and pings it.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get decodes the value at key into result. found is false when the key is absent.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set stores value as JSON for expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.Db.Close()
}

func tokenKey(jti string) string { return "revoked:token:" + jti }

func userKey(userID int64) string { return "revoked:user:" + strconv.FormatInt(userID, 10) }

// RevokeToken denies the token id until it would have expired anyway.
func (c *Cache) RevokeToken(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return c.Set(ctx, tokenKey(jti), true, ttl)
}

// TokenRevoked reports whether the token id was revoked.
func (c *Cache) TokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	found, err := c.Get(ctx, tokenKey(jti), &revoked)
	return found && revoked, err
}

// RevokeUser denies every token of the user issued up to at. The mark lives for ttl,
// which should be the token lifetime.
func (c *Cache) RevokeUser(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	return c.Set(ctx, userKey(userID), at.Unix(), ttl)
}

// UserRevokedAt returns the revocation time of the user, if any.
func (c *Cache) UserRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error) {
	var unix int64
	found, err := c.Get(ctx, userKey(userID), &unix)
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0), true, nil
}
