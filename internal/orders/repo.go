package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// Repository exposes rental order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.RentalOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RentalOrder, error)
	FindByQuotationID(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error)
	List(ctx context.Context, page pagination.Params) ([]models.RentalOrder, string, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.RentalOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RentalOrder, error) {
	var order models.RentalOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByQuotationID(ctx context.Context, quotationID uuid.UUID) (*models.RentalOrder, error) {
	var order models.RentalOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("quotation_id = ?", quotationID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionStatus flips the order status as a guarded single-row
// update. The WHERE clause on the current status makes the transition
// race-safe: a concurrent transition wins and this one reports false.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RentalOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error) {
	return r.listWhere(ctx, "customer_id = ?", []any{customerID}, page)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.RentalOrder, string, error) {
	return r.listWhere(ctx, "vendor_id = ?", []any{vendorID}, page)
}

func (r *repository) List(ctx context.Context, page pagination.Params) ([]models.RentalOrder, string, error) {
	return r.listWhere(ctx, "", nil, page)
}

func (r *repository) listWhere(ctx context.Context, cond string, args []any, page pagination.Params) ([]models.RentalOrder, string, error) {
	limit := pagination.NormalizeLimit(page.Limit)

	query := r.db.WithContext(ctx).Model(&models.RentalOrder{})
	if cond != "" {
		query = query.Where(cond, args...)
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.RentalOrder
	err = query.
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit)).
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
