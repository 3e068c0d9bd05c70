package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT '',
  published INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  stock_qty INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS rental_periods (
  id TEXT PRIMARY KEY,
  duration INTEGER NOT NULL DEFAULT 1,
  unit TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS rental_prices (
  id TEXT PRIMARY KEY,
  variant_id TEXT NOT NULL,
  period_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_rental_prices_variant_period UNIQUE (variant_id, period_id)
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, vendorID uuid.UUID, name, category string, published bool, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Name:      name,
		Category:  category,
		Published: published,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryListFiltersPublishedAndCategory(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	vendorID := uuid.New()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, db, vendorID, "Scissor Lift", "lifting", true, base)
	seedProduct(t, db, vendorID, "Mini Excavator", "earthmoving", true, base.Add(time.Minute))
	seedProduct(t, db, vendorID, "Draft Crane", "lifting", false, base.Add(2*time.Minute))

	published := true
	rows, next, err := repo.List(context.Background(), ListInput{
		Filters: ListFilters{Category: "lifting", Published: &published},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Scissor Lift", rows[0].Name)
	assert.Empty(t, next)
}

func TestRepositoryListQueryMatchesCaseInsensitive(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(t, db, uuid.New(), "Diesel Generator 20kVA", "power", true, base)
	seedProduct(t, db, uuid.New(), "Water Pump", "pumping", true, base.Add(time.Minute))

	rows, _, err := repo.List(context.Background(), ListInput{
		Filters: ListFilters{Query: "generator"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Diesel Generator 20kVA", rows[0].Name)
}

func TestRepositoryListPaginatesWithCursor(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	vendorID := uuid.New()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, vendorID, fmt.Sprintf("Tool %d", i), "tools", true, base.Add(time.Duration(i)*time.Minute))
	}

	first, next, err := repo.List(context.Background(), ListInput{
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)

	second, _, err := repo.List(context.Background(), ListInput{
		Pagination: pagination.Params{Limit: 2, Cursor: next},
	})
	require.NoError(t, err)
	require.Len(t, second, 2)

	// Pages never overlap.
	seen := map[uuid.UUID]bool{}
	for _, p := range append(first, second...) {
		assert.False(t, seen[p.ID], "product %s returned twice", p.ID)
		seen[p.ID] = true
	}
}

func TestRepositoryUpsertRentalPriceOverwrites(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)

	variantID, periodID := uuid.New(), uuid.New()

	first := &models.RentalPrice{ID: uuid.New(), VariantID: variantID, PeriodID: periodID, Price: decimal.RequireFromString("100")}
	require.NoError(t, repo.UpsertRentalPrice(context.Background(), first))

	second := &models.RentalPrice{ID: uuid.New(), VariantID: variantID, PeriodID: periodID, Price: decimal.RequireFromString("120")}
	require.NoError(t, repo.UpsertRentalPrice(context.Background(), second))

	var rates []models.RentalPrice
	require.NoError(t, db.Where("variant_id = ?", variantID).Find(&rates).Error)
	require.Len(t, rates, 1)
	assert.True(t, rates[0].Price.Equal(decimal.RequireFromString("120")))
}
