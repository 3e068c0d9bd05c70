package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormclause "gorm.io/gorm/clause"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// Repository exposes catalog persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	List(ctx context.Context, input ListInput) ([]models.Product, string, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	UpsertRentalPrice(ctx context.Context, price *models.RentalPrice) error
	CreatePeriod(ctx context.Context, period *models.RentalPeriod) (*models.RentalPeriod, error)
	FindPeriodByID(ctx context.Context, id uuid.UUID) (*models.RentalPeriod, error)
	ListPeriods(ctx context.Context) ([]models.RentalPeriod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Variants.RentalPrices.Period").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// List returns one page of products plus the cursor for the next page.
func (r *repository) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	query := buildCriteria(input.Filters).apply(r.db.WithContext(ctx).Model(&models.Product{}))

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err = query.
		Preload("Variants").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (r *repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// UpsertRentalPrice writes a variant's rate for a period, overwriting
// the existing rate for the same (variant, period) pair.
func (r *repository) UpsertRentalPrice(ctx context.Context, price *models.RentalPrice) error {
	return r.db.WithContext(ctx).
		Clauses(gormclause.OnConflict{
			Columns: []gormclause.Column{
				{Name: "variant_id"},
				{Name: "period_id"},
			},
			DoUpdates: gormclause.AssignmentColumns([]string{"price", "updated_at"}),
		}).
		Create(price).Error
}

func (r *repository) CreatePeriod(ctx context.Context, period *models.RentalPeriod) (*models.RentalPeriod, error) {
	if err := r.db.WithContext(ctx).Create(period).Error; err != nil {
		return nil, err
	}
	return period, nil
}

func (r *repository) FindPeriodByID(ctx context.Context, id uuid.UUID) (*models.RentalPeriod, error) {
	var period models.RentalPeriod
	err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) ListPeriods(ctx context.Context) ([]models.RentalPeriod, error) {
	var periods []models.RentalPeriod
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}
