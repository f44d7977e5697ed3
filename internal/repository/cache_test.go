package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genie/internal/logger"
	"genie/internal/model"
)

// countingCatalog records how often the wrapped catalog is hit
type countingCatalog struct {
	Catalog
	finds int
	gets  int
	err   error
}

func (c *countingCatalog) Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error) {
	c.finds++
	if c.err != nil {
		return nil, c.err
	}
	return c.Catalog.Find(ctx, location, propertyType, limit)
}

func (c *countingCatalog) Get(ctx context.Context, id string) (*model.Property, error) {
	c.gets++
	return c.Catalog.Get(ctx, id)
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestCachedCatalog_Find_CacheAside(t *testing.T) {
	rdb, mr := setupRedis(t)
	backend := &countingCatalog{Catalog: NewMemoryCatalog(nil)}
	catalog := NewCachedCatalog(backend, rdb, 5*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := catalog.Find(ctx, "Njoro", model.PropertyTypeHome, 3)
	require.NoError(t, err)
	second, err := catalog.Find(ctx, "Njoro", model.PropertyTypeHome, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, backend.finds)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(FindKey("Njoro", model.PropertyTypeHome, 3)))

	ttl := mr.TTL(FindKey("Njoro", model.PropertyTypeHome, 3))
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestCachedCatalog_Find_KeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "catalog:find:njoro:land:3", FindKey("NJORO", model.PropertyTypeLand, 3))
}

func TestCachedCatalog_Find_BackendErrorNotCached(t *testing.T) {
	rdb, mr := setupRedis(t)
	backend := &countingCatalog{Catalog: NewMemoryCatalog(nil), err: errors.New("db down")}
	catalog := NewCachedCatalog(backend, rdb, time.Minute, logger.NewTestLogger(t))

	_, err := catalog.Find(context.Background(), "Njoro", model.PropertyTypeHome, 3)

	assert.Error(t, err)
	assert.False(t, mr.Exists(FindKey("Njoro", model.PropertyTypeHome, 3)))
}

func TestCachedCatalog_Find_CorruptEntryFallsThrough(t *testing.T) {
	rdb, mr := setupRedis(t)
	backend := &countingCatalog{Catalog: NewMemoryCatalog(nil)}
	catalog := NewCachedCatalog(backend, rdb, time.Minute, logger.NewTestLogger(t))
	require.NoError(t, mr.Set(FindKey("Njoro", model.PropertyTypeLand, 3), "{not json"))

	got, err := catalog.Find(context.Background(), "Njoro", model.PropertyTypeLand, 3)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, backend.finds)
}

func TestCachedCatalog_Find_RedisDown(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	backend := &countingCatalog{Catalog: NewMemoryCatalog(nil)}
	catalog := NewCachedCatalog(backend, rdb, time.Minute, logger.NewTestLogger(t))

	key := FindKey("Lanet", model.PropertyTypeLand, 3)
	redisMock.ExpectGet(key).SetErr(errors.New("connection refused"))
	expected, _ := NewMemoryCatalog(nil).Find(context.Background(), "Lanet", model.PropertyTypeLand, 3)
	payload, _ := json.Marshal(expected)
	redisMock.ExpectSet(key, payload, time.Minute).SetErr(errors.New("connection refused"))

	got, err := catalog.Find(context.Background(), "Lanet", model.PropertyTypeLand, 3)

	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCachedCatalog_Get(t *testing.T) {
	rdb, mr := setupRedis(t)
	backend := &countingCatalog{Catalog: NewMemoryCatalog(nil)}
	catalog := NewCachedCatalog(backend, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := catalog.Get(ctx, "p-003")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Modern 2 Bedroom Apartment", p.Title)
	}
	assert.Equal(t, 1, backend.gets)

	missing, err := catalog.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, mr.Exists(GetKey("missing")))
}
