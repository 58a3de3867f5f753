package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

type countingFetcher struct {
	calls   int
	mosques []model.Mosque
	err     error
}

func (f *countingFetcher) MosquesInBounds(ctx context.Context, b model.BoundingBox, limit int) ([]model.Mosque, error) {
	f.calls++
	return f.mosques, f.err
}

func newCache(t *testing.T, next *countingFetcher) (*MosqueCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewMosqueCache(rdb, next, time.Minute), mr
}

var box = model.BoundingBox{South: 52.3, North: 52.7, West: 13.0, East: 13.8}

func TestMosqueCacheReadThrough(t *testing.T) {
	lat, lng := 52.5, 13.4
	next := &countingFetcher{mosques: []model.Mosque{{ID: "m1", Name: "Sehitlik", Latitude: &lat, Longitude: &lng}}}
	cache, _ := newCache(t, next)
	ctx := context.Background()

	first, err := cache.MosquesInBounds(ctx, box, 100)
	require.NoError(t, err)
	second, err := cache.MosquesInBounds(ctx, box, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 52.5, *second[0].Latitude)

	// a different cap is a different query
	_, err = cache.MosquesInBounds(ctx, box, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestMosqueCacheInvalidate(t *testing.T) {
	next := &countingFetcher{}
	cache, mr := newCache(t, next)
	ctx := context.Background()

	_, _ = cache.MosquesInBounds(ctx, box, 100)
	require.NoError(t, cache.Invalidate(ctx))
	_, _ = cache.MosquesInBounds(ctx, box, 100)

	assert.Equal(t, 2, next.calls)
	v, err := mr.Get(versionKey)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestMosqueCacheDoesNotStoreErrors(t *testing.T) {
	next := &countingFetcher{err: errors.New("db down")}
	cache, _ := newCache(t, next)
	ctx := context.Background()

	_, err := cache.MosquesInBounds(ctx, box, 100)
	assert.Error(t, err)
	_, err = cache.MosquesInBounds(ctx, box, 100)
	assert.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestMosqueCacheBypassesUnavailableRedis(t *testing.T) {
	next := &countingFetcher{}
	cache, mr := newCache(t, next)
	mr.Close()

	_, err := cache.MosquesInBounds(context.Background(), box, 100)
	assert.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestNewClientWithoutAddress(t *testing.T) {
	assert.Nil(t, NewClient("", "", ""))
}
