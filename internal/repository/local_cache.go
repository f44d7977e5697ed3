package repository

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"genie/internal/metrics"
	"genie/internal/model"
)

// LocalCachedCatalog memoises catalog lookups in process. Used in front of
// PostgreSQL when no Redis is configured.
type LocalCachedCatalog struct {
	next  Catalog
	cache *gocache.Cache
}

// NewLocalCachedCatalog wraps next with an in-process cache holding entries for ttl
func NewLocalCachedCatalog(next Catalog, ttl time.Duration) *LocalCachedCatalog {
	return &LocalCachedCatalog{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Find serves from the local cache or the wrapped catalog
func (c *LocalCachedCatalog) Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error) {
	key := FindKey(location, propertyType, limit)
	if cached, ok := c.cache.Get(key); ok {
		metrics.CatalogCache.WithLabelValues("hit").Inc()
		return append([]model.Property(nil), cached.([]model.Property)...), nil
	}
	metrics.CatalogCache.WithLabelValues("miss").Inc()

	properties, err := c.next.Find(ctx, location, propertyType, limit)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, append([]model.Property(nil), properties...))
	return properties, nil
}

// Get serves from the local cache or the wrapped catalog
func (c *LocalCachedCatalog) Get(ctx context.Context, id string) (*model.Property, error) {
	key := GetKey(id)
	if cached, ok := c.cache.Get(key); ok {
		metrics.CatalogCache.WithLabelValues("hit").Inc()
		property := cached.(model.Property)
		return &property, nil
	}
	metrics.CatalogCache.WithLabelValues("miss").Inc()

	property, err := c.next.Get(ctx, id)
	if err != nil || property == nil {
		return property, err
	}
	c.cache.SetDefault(key, *property)
	return property, nil
}
