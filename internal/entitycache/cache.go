// Package entitycache holds time-bounded copies of records owned by
// the ung store, so that multiple UI panels reading the same entity
// type do not re-invoke the tool redundantly.
package entitycache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Key addresses one cached batch: an entity type plus an optional
// scope (filter fingerprint).
type Key struct {
	Entity domain.EntityType
	Scope  string
}

type entry struct {
	value      any
	capturedAt time.Time
}

// Config controls the default TTL applied when a caller passes none.
type Config struct {
	TTL time.Duration
}

func DefaultConfig() Config {
	return Config{TTL: 60 * time.Second}
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultConfig().TTL
	}
	return c
}

// Cache stores entries with their capture timestamp. Freshness is
// judged per read against the caller's TTL, so two panels may apply
// different bounds to the same entry.
type Cache struct {
	mu    sync.RWMutex
	items map[Key]entry
	clock clock.Clock
	cfg   Config
	log   *zap.Logger
}

type Params struct {
	fx.In

	Clock  clock.Clock
	Log    *zap.Logger
	Config Config `optional:"true"`
}

func New(p Params) *Cache {
	return &Cache{
		items: make(map[Key]entry),
		clock: p.Clock,
		cfg:   p.Config.withDefaults(),
		log:   p.Log.Named("cache"),
	}
}

func (c *Cache) lookup(key Key, ttl time.Duration) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.capturedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key Key, value any) {
	c.mu.Lock()
	c.items[key] = entry{value: value, capturedAt: c.clock.Now()}
	c.mu.Unlock()
}

// Invalidate drops every scope of one entity type without waiting for
// TTL expiry. This is how a UI-triggered reload forces a re-fetch.
func (c *Cache) Invalidate(entity domain.EntityType) {
	c.mu.Lock()
	for key := range c.items {
		if key.Entity == entity {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	c.log.Debug("cache invalidated", zap.String("entity", string(entity)))
}

// InvalidateAll drops everything.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.items = make(map[Key]entry)
	c.mu.Unlock()
	c.log.Debug("cache invalidated", zap.String("entity", "all"))
}

// GetOrFetch returns the cached value for key when it is younger than
// ttl, and otherwise calls fetch, stores the result with the current
// timestamp, and returns it. ttl <= 0 selects the cache default.
// Mutating operations must not go through here; they use the bus
// directly and then Invalidate the affected type.
func GetOrFetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if ttl <= 0 {
		ttl = c.cfg.TTL
	}
	if value, ok := c.lookup(key, ttl); ok {
		if typed, ok := value.(T); ok {
			return typed, nil
		}
	}

	fetched, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.store(key, fetched)
	return fetched, nil
}
