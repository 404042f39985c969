package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// LocalCache is an in-memory Cache used when Redis is not configured.
type LocalCache struct {
	data   map[string]cacheEntry
	mu     sync.RWMutex
	log    *zap.Logger
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

func NewLocalCache(cleanupInterval time.Duration, log *zap.Logger) *LocalCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	c := &LocalCache{
		data:   make(map[string]cacheEntry),
		log:    log,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go c.cleanupLoop(cleanupInterval)

	log.Info("local in-memory cache initialized", zap.Duration("cleanup_interval", cleanupInterval))
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || c.expired(entry) {
		return "", ErrMiss
	}
	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		s = string(data)
	}

	entry := cacheEntry{value: s}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.data[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// Incr mirrors Redis INCR: a missing key counts from zero and keeps no expiry.
func (c *LocalCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	if entry, ok := c.data[key]; ok && !c.expired(entry) {
		v, err := strconv.ParseInt(entry.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
		n = v
	}
	n++
	c.data[key] = cacheEntry{value: strconv.FormatInt(n, 10)}
	return n, nil
}

func (c *LocalCache) Ping(ctx context.Context) error {
	return nil
}

func (c *LocalCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

func (c *LocalCache) expired(e cacheEntry) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(c.now())
}

func (c *LocalCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LocalCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := 0
	for key, entry := range c.data {
		if c.expired(entry) {
			delete(c.data, key)
			expired++
		}
	}
	if expired > 0 {
		c.log.Debug("cache cleanup completed", zap.Int("expired_entries", expired))
	}
}
