package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/geo"
	"github.com/Nixie-Tech-LLC/minaarly/internal/metrics"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
	"github.com/Nixie-Tech-LLC/minaarly/internal/viewport"
)

const versionKey = "mosques:version"

// NewClient opens a Redis client. It returns nil when no address is set so
// callers can run without a cache.
func NewClient(address, username, password string) *goredis.Client {
	if address == "" {
		return nil
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// MosqueCache is a read-through cache in front of a viewport fetcher.
// Entries are keyed by the rounded bounding box and a listing version that
// Invalidate bumps, so stale entries are never read after a write and simply
// expire.
type MosqueCache struct {
	rdb  goredis.Cmdable
	next viewport.Fetcher
	ttl  time.Duration
}

var _ viewport.Fetcher = (*MosqueCache)(nil)

func NewMosqueCache(rdb goredis.Cmdable, next viewport.Fetcher, ttl time.Duration) *MosqueCache {
	return &MosqueCache{rdb: rdb, next: next, ttl: ttl}
}

func (c *MosqueCache) MosquesInBounds(ctx context.Context, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	version, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		log.Warn().Err(err).Msg("redis unavailable, bypassing viewport cache")
		return c.next.MosquesInBounds(ctx, b, limit)
	}

	key := fmt.Sprintf("mosques:bbox:v%d:%d:%s", version, limit, geo.Key(b, 5))
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached []model.Mosque
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.CacheHitsTotal.Inc()
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("dropping undecodable viewport cache entry")
	}
	metrics.CacheMissesTotal.Inc()

	mosques, err := c.next.MosquesInBounds(ctx, b, limit)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(mosques)
	if err != nil {
		return mosques, nil
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to add viewport result to redis")
	}
	return mosques, nil
}

// Invalidate makes every cached viewport result unreachable.
func (c *MosqueCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump mosque cache version: %w", err)
	}
	return nil
}
