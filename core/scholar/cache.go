package scholar

import (
	"context"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves the raw relation list for a query. *Client implements
// it; tests substitute fakes.
type Fetcher interface {
	FetchRelations(ctx context.Context, q RelationQuery) ([]RelationEntry, error)
}

// CacheConfig holds RelationCache construction parameters.
type CacheConfig struct {
	Size    int     // Max memoized queries (default 1024)
	SortBy  SortKey // Primary sort dimension for every record
	Fetcher Fetcher

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// RelationCache memoizes filtered-and-sorted relation records by query.
// Identical queries hit the network once; the sort dimension is fixed per
// cache instance so memoized records never need re-ordering. Records are
// treated as immutable by every consumer.
type RelationCache struct {
	fetcher Fetcher
	sortBy  SortKey
	store   *lru.Cache[RelationQuery, []RelationEntry]
	group   singleflight.Group
	logger  *slog.Logger

	// Cache statistics for observability
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// NewRelationCache creates a RelationCache.
func NewRelationCache(cfg CacheConfig) (*RelationCache, error) {
	if cfg.Size <= 0 {
		cfg.Size = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &RelationCache{
		fetcher: cfg.Fetcher,
		sortBy:  cfg.SortBy,
		logger:  logger.With(slog.String("component", "relation_cache")),
	}

	store, err := lru.NewWithEvict[RelationQuery, []RelationEntry](cfg.Size, c.handleEviction)
	if err != nil {
		return nil, err
	}
	c.store = store
	return c, nil
}

func (c *RelationCache) handleEviction(q RelationQuery, _ []RelationEntry) {
	c.evictions.Add(1)
	c.logger.Debug("record evicted", slog.String("query", q.CacheKey()))
}

// Get returns the memoized record for q, fetching, filtering, and sorting
// it on first sight. Concurrent callers for the same query share one
// fetch; unrelated queries never block each other.
func (c *RelationCache) Get(ctx context.Context, q RelationQuery) ([]RelationEntry, error) {
	if record, ok := c.store.Get(q); ok {
		c.hits.Add(1)
		return record, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(q.CacheKey(), func() (any, error) {
		// A flight that finished while this caller queued already
		// populated the store.
		if record, ok := c.store.Get(q); ok {
			return record, nil
		}

		raw, err := c.fetcher.FetchRelations(ctx, q)
		if err != nil {
			return nil, err
		}

		record := FilterEntries(raw, q)
		SortEntries(record, c.sortBy)
		c.store.Add(q, record)

		c.logger.Debug("record memoized",
			slog.String("query", q.CacheKey()),
			slog.Int("raw", len(raw)),
			slog.Int("kept", len(record)))
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]RelationEntry), nil
}

// Contains reports whether q is already memoized, without counting a hit.
func (c *RelationCache) Contains(q RelationQuery) bool {
	return c.store.Contains(q)
}

// Stats returns a snapshot of the cache counters.
func (c *RelationCache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.store.Len(),
	}
}
