// Package cache stores small reference tables in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/observability"
)

// Keys of the cached reference tables.
const (
	KeyBases       = "ref:bases"
	KeyEquipes     = "ref:equipes"
	KeyIndicadores = "ref:indicadores"
)

// ReferenceKeys lists every key invalidated when reference data changes.
var ReferenceKeys = []string{KeyBases, KeyEquipes, KeyIndicadores}

// Cache is a JSON value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewRedis returns a Redis backed cache. A nil client yields Noop.
func NewRedis(client *redis.Client, ttl time.Duration, metrics *observability.Metrics) Cache {
	if client == nil {
		return Noop{}
	}
	return &redisCache{client: client, ttl: ttl, metrics: metrics}
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.RecordCache(key, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	c.metrics.RecordCache(key, true)
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Delete(context.Context, ...string) error        { return nil }

// Remember returns the cached value under key, or calls load and caches its
// result. Cache failures are logged and never fail the call.
func Remember[T any](ctx context.Context, c Cache, logger *zap.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if hit, err := c.Get(ctx, key, &cached); err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
