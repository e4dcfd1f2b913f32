package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Ken-Miles/farm-computer/internal/metrics"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
)

// Extractor produces a summary for a resolved URL on cache miss.
type Extractor interface {
	Parse(ctx context.Context, url string) (*wiki.Summary, error)
}

// Entry wraps a summary with the time it was computed. The TTL comparison
// always happens here, never in a backing store.
type Entry struct {
	Summary  *wiki.Summary `json:"summary"`
	CachedAt time.Time     `json:"cached_at"`
}

// Store is an optional second-level persistent store behind the in-memory
// map (see the redis implementation).
type Store interface {
	Get(ctx context.Context, url string) (*Entry, bool, error)
	Set(ctx context.Context, url string, entry *Entry) error
	Delete(ctx context.Context, url string) error
}

// Cache maps resolved URLs to summaries with time-based expiry. Entries
// whose age strictly exceeds the TTL are deleted and recomputed; an entry
// exactly at the boundary is still fresh. Concurrent misses for one URL
// collapse into a single extraction.
type Cache struct {
	extractor Extractor
	store     Store
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

type Option func(*Cache)

// WithStore adds a persistent second level consulted on memory misses.
func WithStore(store Store) Option {
	return func(c *Cache) { c.store = store }
}

// WithClock overrides the time source. Tests use this to cross the TTL
// boundary without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(extractor Extractor, ttlHours int, logger *zap.Logger, opts ...Option) *Cache {
	c := &Cache{
		extractor: extractor,
		ttl:       time.Duration(ttlHours) * time.Hour,
		logger:    logger,
		now:       time.Now,
		entries:   make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the summary for a resolved URL, computing and storing it on
// miss. The second return reports whether the summary came from cache.
func (c *Cache) Get(ctx context.Context, url string) (*wiki.Summary, bool, error) {
	if summary := c.lookup(ctx, url); summary != nil {
		metrics.CacheHits.WithLabelValues("memory").Inc()
		c.logger.Debug("Cache hit", zap.String("url", url))
		return summary, true, nil
	}

	metrics.CacheMisses.WithLabelValues("memory").Inc()

	type result struct {
		summary *wiki.Summary
		hit     bool
	}
	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		// a concurrent miss may have already filled the entry
		if summary := c.lookup(ctx, url); summary != nil {
			return result{summary: summary, hit: true}, nil
		}
		summary, err := c.fill(ctx, url)
		if err != nil {
			return nil, err
		}
		return result{summary: summary}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(result)
	return res.summary, res.hit, nil
}

// lookup checks memory then the persistent store, expiring stale entries
// from both along the way. Returns nil on miss.
func (c *Cache) lookup(ctx context.Context, url string) *wiki.Summary {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()

	if ok {
		if !c.expired(entry) {
			return entry.Summary
		}
		c.logger.Info("Cache entry expired", zap.String("url", url))
		c.mu.Lock()
		delete(c.entries, url)
		c.mu.Unlock()
	}

	if c.store == nil {
		return nil
	}

	entry, found, err := c.store.Get(ctx, url)
	if err != nil {
		c.logger.Warn("Persistent cache read failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	if c.expired(entry) {
		if err := c.store.Delete(ctx, url); err != nil {
			c.logger.Warn("Persistent cache delete failed", zap.String("url", url), zap.Error(err))
		}
		return nil
	}

	metrics.CacheHits.WithLabelValues("store").Inc()
	c.mu.Lock()
	c.entries[url] = entry
	c.mu.Unlock()
	return entry.Summary
}

func (c *Cache) fill(ctx context.Context, url string) (*wiki.Summary, error) {
	summary, err := c.extractor.Parse(ctx, url)
	if err != nil {
		return nil, err
	}

	entry := &Entry{Summary: summary, CachedAt: c.now()}

	c.mu.Lock()
	c.entries[url] = entry
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Set(ctx, url, entry); err != nil {
			c.logger.Warn("Persistent cache write failed", zap.String("url", url), zap.Error(err))
		}
	}

	c.logger.Info("Cached summary", zap.String("url", url))
	return summary, nil
}

func (c *Cache) expired(entry *Entry) bool {
	return c.now().Sub(entry.CachedAt) > c.ttl
}

// Len reports the number of in-memory entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
