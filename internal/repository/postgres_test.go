package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genie/internal/model"
)

var propertyRowColumns = []string{"id", "title", "location", "property_type", "image", "price"}

func setupMockCatalog(t *testing.T) (*PostgresCatalog, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresCatalogFromDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresCatalog_Find(t *testing.T) {
	catalog, mock := setupMockCatalog(t)

	rows := sqlmock.NewRows(propertyRowColumns).
		AddRow("p-001", "3 Bedroom Bungalow", "Njoro, Nakuru", "home", "/a.jpg", 8500000.0).
		AddRow("p-009", "Bedsitter Block", "Njoro, Nakuru", "home", "/b.jpg", 4200000.0)
	mock.ExpectQuery(`SELECT id, title, location, property_type, image, price\s+FROM properties\s+WHERE location ILIKE \$1 AND property_type = \$2\s+ORDER BY position ASC\s+LIMIT \$3`).
		WithArgs("%Njoro%", model.PropertyTypeHome, 3).
		WillReturnRows(rows)

	got, err := catalog.Find(context.Background(), "Njoro", "", 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p-001", got[0].ID)
	assert.Equal(t, model.PropertyTypeHome, got[0].Type)
	assert.Equal(t, 8500000.0, got[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_Find_EscapesWildcards(t *testing.T) {
	catalog, mock := setupMockCatalog(t)

	mock.ExpectQuery(`FROM properties`).
		WithArgs(`%50\%_off%`, model.PropertyTypeLand, 3).
		WillReturnRows(sqlmock.NewRows(propertyRowColumns))

	got, err := catalog.Find(context.Background(), "50%_off", model.PropertyTypeLand, 3)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_Find_Error(t *testing.T) {
	catalog, mock := setupMockCatalog(t)

	mock.ExpectQuery(`FROM properties`).WillReturnError(errors.New("connection reset"))

	_, err := catalog.Find(context.Background(), "Nakuru", model.PropertyTypeHome, 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find properties")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_Get(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, title, location, property_type, image, price FROM properties WHERE id = $1`)

	t.Run("Found", func(t *testing.T) {
		catalog, mock := setupMockCatalog(t)
		mock.ExpectQuery(query).
			WithArgs("p-007").
			WillReturnRows(sqlmock.NewRows(propertyRowColumns).
				AddRow("p-007", "Lakeview 5 Acres", "Naivasha", "land", "/c.jpg", 22000000.0))

		p, err := catalog.Get(context.Background(), "p-007")

		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, model.PropertyTypeLand, p.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		catalog, mock := setupMockCatalog(t)
		mock.ExpectQuery(query).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(propertyRowColumns))

		p, err := catalog.Get(context.Background(), "missing")

		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{
			name: "Key value passed through",
			dsn:  "host=db port=5432 user=u password=p dbname=genie sslmode=disable",
			want: "host=db port=5432 user=u password=p dbname=genie sslmode=disable",
		},
		{
			name: "URL converted",
			dsn:  "postgres://u:p@db:5432/genie?sslmode=disable",
			want: "dbname=genie host=db password=p port=5432 sslmode=disable user=u",
		},
		{
			name: "Surrounding whitespace trimmed",
			dsn:  "  host=db dbname=genie\n",
			want: "host=db dbname=genie",
		},
		{
			name:    "Malformed URL",
			dsn:     "postgres://u:p@db:port/genie",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := connectionString(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "prefer_simple_protocol")
		})
	}
}
