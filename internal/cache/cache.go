// Package cache stores rendered lookups and stats for pages, and implements
// path-based revalidation on top of a small key/value interface.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// New connects to Redis when url is set and falls back to the in-memory cache otherwise,
// or when Redis cannot be reached.
func New(url string, log *zap.Logger) Cache {
	if url == "" {
		return NewLocalCache(time.Minute, log)
	}
	c, err := NewRedisCache(url, log)
	if err != nil {
		log.Warn("redis unavailable, using local cache", zap.Error(err))
		return NewLocalCache(time.Minute, log)
	}
	return c
}

// GetJSON returns the cached value under key, or calls load and stores its result.
// Cache failures never fail the request; they only cost a reload.
func GetJSON[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, err := c.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		zap.L().Debug("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Revalidator versions cached entries per page path. Bumping a path's generation makes
// every key derived from the old generation unreachable.
type Revalidator struct {
	cache Cache
	log   *zap.Logger
}

func NewRevalidator(c Cache, log *zap.Logger) *Revalidator {
	return &Revalidator{cache: c, log: log}
}

func genKey(path string) string {
	return "gen:" + path
}

func (r *Revalidator) Revalidate(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if _, err := r.cache.Incr(ctx, genKey(p)); err != nil {
			r.log.Warn("revalidate failed", zap.String("path", p), zap.Error(err))
		}
	}
}

func (r *Revalidator) Generation(ctx context.Context, path string) int64 {
	raw, err := r.cache.Get(ctx, genKey(path))
	if err != nil {
		return 0
	}
	var n int64
	if _, err := fmt.Sscan(raw, &n); err != nil {
		return 0
	}
	return n
}

// Key builds a cache key for name scoped to the current generation of path.
func (r *Revalidator) Key(ctx context.Context, path, name string) string {
	return fmt.Sprintf("view:%s:%d:%s", path, r.Generation(ctx, path), name)
}
