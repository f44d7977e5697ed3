package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"genie/internal/logger"
	"genie/internal/metrics"
	"genie/internal/model"
)

// Catalog is the lookup surface wrapped by CachedCatalog
type Catalog interface {
	Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error)
	Get(ctx context.Context, id string) (*model.Property, error)
}

// CachedCatalog is a cache-aside Redis layer over another catalog. Redis
// failures are logged and fall through to the wrapped catalog.
type CachedCatalog struct {
	next   Catalog
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisClient creates a Redis client and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewCachedCatalog wraps next with a Redis cache holding entries for ttl
func NewCachedCatalog(next Catalog, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedCatalog {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedCatalog{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// FindKey is the cache key for a Find call
func FindKey(location string, propertyType model.PropertyType, limit int) string {
	return fmt.Sprintf("catalog:find:%s:%s:%d", strings.ToLower(location), propertyType, limit)
}

// GetKey is the cache key for a Get call
func GetKey(id string) string {
	return "catalog:get:" + id
}

// Find serves from cache, or queries the wrapped catalog and caches the result
func (c *CachedCatalog) Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error) {
	key := FindKey(location, propertyType, limit)

	var cached []model.Property
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	properties, err := c.next.Find(ctx, location, propertyType, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, properties)
	return properties, nil
}

// Get serves from cache, or queries the wrapped catalog. Misses in the wrapped catalog are not cached.
func (c *CachedCatalog) Get(ctx context.Context, id string) (*model.Property, error) {
	key := GetKey(id)

	var cached model.Property
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	property, err := c.next.Get(ctx, id)
	if err != nil || property == nil {
		return property, err
	}
	c.store(ctx, key, property)
	return property, nil
}

func (c *CachedCatalog) load(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CatalogCache.WithLabelValues("miss").Inc()
		} else {
			metrics.CatalogCache.WithLabelValues("error").Inc()
			c.logger.WithError(err).Warn("catalog cache read failed", map[string]interface{}{"key": key})
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.CatalogCache.WithLabelValues("error").Inc()
		c.logger.WithError(err).Warn("catalog cache entry is corrupt", map[string]interface{}{"key": key})
		return false
	}

	metrics.CatalogCache.WithLabelValues("hit").Inc()
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).Warn("failed to encode catalog cache entry", map[string]interface{}{"key": key})
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("catalog cache write failed", map[string]interface{}{"key": key})
	}
}
