// Package cache is a Redis read-through cache for aggregate reports.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

const (
	keyPrefix = "hiring:agg:"
	// genKey lives outside keyPrefix so DeletePrefix never resets it.
	genKey = "hiring:agg-gen"

	defaultComputeTimeout = 30 * time.Second
)

// Store is satisfied by *redis.Client.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Cache stores aggregates under a generation-stamped key. Invalidate bumps
// the generation, so a computation that started before a write can only
// land under a key no reader will look up again.
type Cache struct {
	store          Store
	ttl            time.Duration
	computeTimeout time.Duration
	group          singleflight.Group
	logger         *slog.Logger
	hits           atomic.Int64
	misses         atomic.Int64
}

func New(store Store, ttl time.Duration, log *slog.Logger) *Cache {
	return &Cache{
		store:          store,
		ttl:            ttl,
		computeTimeout: defaultComputeTimeout,
		logger:         logger.WithComponent(log, "aggregate-cache"),
	}
}

// Key names the cached value of report for year.
func Key(report string, year int) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, report, year)
}

// Fetch returns the cached value under key, or computes, stores and returns
// it. Concurrent misses for the same key share one computation, which is
// not cancelled when the caller that started it goes away. Cache failures
// degrade to calling compute. hit reports whether the value came from
// Redis. A nil cache always computes.
func Fetch[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (value T, hit bool, err error) {
	if c == nil {
		value, err = compute(ctx)
		return value, false, err
	}
	gen, err := c.generation(ctx)
	if err != nil {
		logger.FromContext(ctx, c.logger).Error("cache generation lookup failed", "error", err)
		value, err = compute(ctx)
		return value, false, err
	}
	stamped := fmt.Sprintf("%s@%d", key, gen)

	if v, ok := get[T](ctx, c, stamped); ok {
		c.hits.Add(1)
		return v, true, nil
	}
	c.misses.Add(1)

	shared, err, _ := c.group.Do(stamped, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.computeTimeout)
		defer cancel()
		if v, ok := get[T](sctx, c, stamped); ok {
			return v, nil
		}
		v, err := compute(sctx)
		if err != nil {
			return nil, err
		}
		c.set(sctx, stamped, v)
		return v, nil
	})
	if err != nil {
		return value, false, err
	}
	return shared.(T), false, nil
}

func (c *Cache) generation(ctx context.Context) (int64, error) {
	data, found, err := c.store.Get(ctx, genKey)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing cache generation %q: %w", data, err)
	}
	return gen, nil
}

func get[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx, c.logger).Error("cache get failed", "key", key, "error", err)
		return v, false
	}
	if !found {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		logger.FromContext(ctx, c.logger).Error("cache unmarshal failed", "key", key, "error", err)
		return v, false
	}
	return v, true
}

func (c *Cache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		logger.FromContext(ctx, c.logger).Error("cache set failed", "key", key, "error", err)
	}
}

// Invalidate retires every cached aggregate by bumping the generation,
// then removes the retired entries.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	gen, err := c.store.Incr(ctx, genKey)
	if err != nil {
		return fmt.Errorf("invalidating aggregate cache: %w", err)
	}
	deleted, err := c.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		logger.FromContext(ctx, c.logger).Warn("retired cache entries not removed", "generation", gen, "error", err)
		return nil
	}
	logger.FromContext(ctx, c.logger).Info("aggregate cache invalidated", "generation", gen, "keys_deleted", deleted)
	return nil
}

func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
