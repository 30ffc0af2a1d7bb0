package embed

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// vectorCache provides 2-tier caching of embedding vectors:
// L1 in-memory + L2 Redis. L1 is fast but lost on restart; L2 survives
// restarts and is shared between replicas. Resume texts repeat across
// sweeper passes, so cache hits skip whole model calls.
type vectorCache struct {
	l1         sync.Map      // key → *cacheEntry
	rdb        *redis.Client // nil if Redis unavailable
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// newVectorCache sets up the cache. redisURL can be empty to disable L2;
// an unreachable Redis disables L2 with a warning, never fatally.
func newVectorCache(redisURL string, ttl time.Duration, maxEntries int) *vectorCache {
	c := &vectorCache{ttl: ttl, maxEntries: maxEntries}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("embed cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("embed cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("embed cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	go c.cleanupLoop()
	return c
}

// cacheKey builds a deterministic key from the model name and text.
func cacheKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "|" + text))
	return fmt.Sprintf("ccm:%x", hash[:12])
}

// get tries L1, then L2. On L2 hit, populates L1.
func (c *vectorCache) get(ctx context.Context, key string) ([]float32, bool) {
	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			var vec []float32
			if json.Unmarshal(entry.data, &vec) == nil {
				c.hits.Add(1)
				return vec, true
			}
		}
		c.l1.Delete(key) // expired or corrupt
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var vec []float32
			if json.Unmarshal(data, &vec) == nil {
				c.hits.Add(1)
				c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
				return vec, true
			}
		}
	}

	c.misses.Add(1)
	return nil, false
}

// set stores a vector in both tiers.
func (c *vectorCache) set(ctx context.Context, key string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}

	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("embed cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Stats returns cache hit/miss counters.
func (c *vectorCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// evictIfNeeded removes entries when L1 exceeds maxEntries: expired
// entries first, then the entries closest to expiry.
func (c *vectorCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})
	if count < c.maxEntries {
		return
	}

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries.
func (c *vectorCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}
