package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"genie/internal/model"
)

const propertyColumns = `id, title, location, property_type, image, price`

// PostgresCatalog reads the property catalog from PostgreSQL
type PostgresCatalog struct {
	db *sqlx.DB
}

// NewPostgresCatalog connects to PostgreSQL
func NewPostgresCatalog(dsn string, maxConn, maxIdleConn int) (*PostgresCatalog, error) {
	dsn, err := connectionString(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCatalog{db: db}, nil
}

// connectionString normalises a postgres:// URL into lib/pq key=value form.
// Key=value strings are passed through untouched.
func connectionString(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn, nil
	}
	converted, err := pq.ParseURL(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	return converted, nil
}

// NewPostgresCatalogFromDB wraps an existing connection
func NewPostgresCatalogFromDB(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Close closes the database connection
func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

// Find returns at most limit properties in catalog position order
func (c *PostgresCatalog) Find(ctx context.Context, location string, propertyType model.PropertyType, limit int) ([]model.Property, error) {
	if propertyType != model.PropertyTypeLand {
		propertyType = model.PropertyTypeHome
	}

	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE location ILIKE $1 AND property_type = $2
		ORDER BY position ASC
		LIMIT $3
	`
	properties := []model.Property{}
	if err := c.db.SelectContext(ctx, &properties, query, "%"+escapeLike(location)+"%", propertyType, limit); err != nil {
		return nil, fmt.Errorf("failed to find properties: %w", err)
	}
	return properties, nil
}

// Get retrieves a single property by id, nil when it does not exist
func (c *PostgresCatalog) Get(ctx context.Context, id string) (*model.Property, error) {
	var property model.Property
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	err := c.db.GetContext(ctx, &property, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

// escapeLike escapes ILIKE wildcards so locations match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
