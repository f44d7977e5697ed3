package repository

import (
	"context"
	"strings"

	"genie/internal/model"
)

// DefaultProperties is the built-in mock catalog, in display order
var DefaultProperties = []model.Property{
	{ID: "p-001", Title: "3 Bedroom Bungalow near Egerton", Location: "Njoro, Nakuru", Type: model.PropertyTypeHome, Image: "/images/njoro-bungalow.jpg", Price: 8_500_000},
	{ID: "p-002", Title: "1/8 Acre Plot, Ready Title", Location: "Njoro, Nakuru", Type: model.PropertyTypeLand, Image: "/images/njoro-plot.jpg", Price: 1_200_000},
	{ID: "p-003", Title: "Modern 2 Bedroom Apartment", Location: "Milimani, Nakuru", Type: model.PropertyTypeHome, Image: "/images/milimani-apartment.jpg", Price: 6_800_000},
	{ID: "p-004", Title: "4 Bedroom Maisonette with DSQ", Location: "Milimani, Nakuru", Type: model.PropertyTypeHome, Image: "/images/milimani-maisonette.jpg", Price: 14_500_000},
	{ID: "p-005", Title: "Quarter Acre, Tarmac Access", Location: "Lanet, Nakuru", Type: model.PropertyTypeLand, Image: "/images/lanet-land.jpg", Price: 2_800_000},
	{ID: "p-006", Title: "2 Bedroom Townhouse", Location: "Section 58, Nakuru", Type: model.PropertyTypeHome, Image: "/images/section58-townhouse.jpg", Price: 5_900_000},
	{ID: "p-007", Title: "Lakeview 5 Acres", Location: "Naivasha", Type: model.PropertyTypeLand, Image: "/images/naivasha-acres.jpg", Price: 22_000_000},
	{ID: "p-008", Title: "Holiday Cottage by the Lake", Location: "Naivasha", Type: model.PropertyTypeHome, Image: "/images/naivasha-cottage.jpg", Price: 9_750_000},
	{ID: "p-009", Title: "Starter Bedsitter Block", Location: "Njoro, Nakuru", Type: model.PropertyTypeHome, Image: "/images/njoro-bedsitters.jpg", Price: 4_200_000},
	{ID: "p-010", Title: "Family Home on Half Acre", Location: "Njoro, Nakuru", Type: model.PropertyTypeHome, Image: "/images/njoro-family-home.jpg", Price: 11_000_000},
	{ID: "p-011", Title: "Commercial Plot on Highway", Location: "Gilgil", Type: model.PropertyTypeLand, Image: "/images/gilgil-commercial.jpg", Price: 6_500_000},
	{ID: "p-012", Title: "Garden Apartment", Location: "Kilimani, Nairobi", Type: model.PropertyTypeHome, Image: "/images/kilimani-apartment.jpg", Price: 18_000_000},
}

// MemoryCatalog is a read-only in-memory catalog
type MemoryCatalog struct {
	items []model.Property
}

// NewMemoryCatalog creates a catalog over items, or DefaultProperties when items is nil
func NewMemoryCatalog(items []model.Property) *MemoryCatalog {
	if items == nil {
		items = DefaultProperties
	}
	return &MemoryCatalog{items: append([]model.Property(nil), items...)}
}

// Find returns at most limit items in catalog order whose location contains
// location and whose type matches propertyType (land, or home otherwise)
func (c *MemoryCatalog) Find(_ context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error) {
	wantLand := propertyType == model.PropertyTypeLand
	needle := strings.ToLower(location)

	results := []model.Property{}
	for _, p := range c.items {
		if limit > 0 && len(results) >= limit {
			break
		}
		if !strings.Contains(strings.ToLower(p.Location), needle) {
			continue
		}
		if (p.Type == model.PropertyTypeLand) != wantLand {
			continue
		}
		results = append(results, p)
	}
	return results, nil
}

// Get returns the item with id, or nil when there is none
func (c *MemoryCatalog) Get(_ context.Context, id string) (*model.Property, error) {
	for _, p := range c.items {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}
