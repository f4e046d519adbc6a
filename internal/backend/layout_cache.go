package backend

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LayoutCache keeps fetched room layouts in Redis for a short TTL.  Room
// layouts change rarely but are re-fetched on every showtime selection, so
// even a small TTL removes most of the backend round-trips.  A nil Redis
// client disables the cache entirely; every method then degrades to a
// no-op and callers fall through to the backend.
type LayoutCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLayoutCache returns a cache bound to the given client.  rdb may be
// nil, in which case the cache is disabled.
func NewLayoutCache(rdb *redis.Client, ttl time.Duration) *LayoutCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LayoutCache{rdb: rdb, ttl: ttl}
}

func layoutKey(showtimeID uint64) string {
	return "layout:showtime:" + strconv.FormatUint(showtimeID, 10)
}

// Get returns the cached layout for a showtime, or (nil, false) on a miss,
// a decode failure or a disabled cache.  Cache errors are never surfaced –
// a broken cache must look exactly like a miss.
func (c *LayoutCache) Get(ctx context.Context, showtimeID uint64) (*RoomLayout, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, layoutKey(showtimeID)).Bytes()
	if err != nil {
		return nil, false
	}
	var l RoomLayout
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, false
	}
	return &l, true
}

// Put stores a layout under the showtime key with the configured TTL.
// Errors are swallowed for the same reason Get swallows them.
func (c *LayoutCache) Put(ctx context.Context, showtimeID uint64, l *RoomLayout) {
	if c.rdb == nil || l == nil {
		return
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, layoutKey(showtimeID), raw, c.ttl).Err()
}

// Cached decorates a Client so layout fetches go through the cache.  All
// other calls pass straight through to the embedded client.
type Cached struct {
	*Client
	cache *LayoutCache
}

// NewCached wraps client with the given layout cache.
func NewCached(client *Client, cache *LayoutCache) *Cached {
	if client == nil {
		panic("nil client passed to NewCached")
	}
	return &Cached{Client: client, cache: cache}
}

// Layout serves from the cache when possible and fills it on a miss.
func (c *Cached) Layout(ctx context.Context, showtimeID uint64) (*RoomLayout, error) {
	if c.cache != nil {
		if l, ok := c.cache.Get(ctx, showtimeID); ok {
			return l, nil
		}
	}
	l, err := c.Client.Layout(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Put(ctx, showtimeID, l)
	}
	return l, nil
}
