package quotations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	"github.com/rentkart/rentkart-backend/pkg/pagination"
)

// Repository exposes quotation persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quotation *models.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quotation *models.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Vendor").
		Preload("Coupon").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// FindByIDForUpdate locks the quotation row for the duration of the
// surrounding transaction. Items are loaded in a second query because
// FOR UPDATE cannot span the joined preload.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("quotation_id = ?", id).
		Order("created_at ASC").
		Find(&quotation.Items).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	return r.list(ctx, "customer_id = ?", customerID, page)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, page pagination.Params) ([]models.Quotation, string, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, page)
}

func (r *repository) list(ctx context.Context, cond string, arg any, page pagination.Params) ([]models.Quotation, string, error) {
	limit := pagination.NormalizeLimit(page.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where(cond, arg)

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Quotation
	err = query.
		Preload("Items").
		Preload("Vendor").
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

// TransitionStatus moves a quotation between states with a guarded
// update. The WHERE clause on the current status makes the transition
// race-safe: a concurrent transition wins and this one reports false.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.QuotationStatus, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case enums.QuotationStatusSent:
		updates["sent_at"] = at
	case enums.QuotationStatusConfirmed:
		updates["confirmed_at"] = at
	case enums.QuotationStatusCancelled:
		updates["cancelled_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
