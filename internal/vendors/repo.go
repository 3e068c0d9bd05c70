package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
)

// Repository exposes vendor persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	FindVendorByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error)
	UpsertDeliveryConfig(ctx context.Context, cfg *models.VendorDeliveryConfig) error
	CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error)
	List(ctx context.Context) ([]models.Vendor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vendor repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		return nil, err
	}
	return vendor, nil
}

func (r *repository) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).
		Preload("PickupAddress").
		Preload("DeliveryConfig").
		Where("id = ?", vendorID).
		First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) FindVendorByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).
		Preload("PickupAddress").
		Preload("DeliveryConfig").
		Where("owner_id = ?", ownerID).
		First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) UpsertDeliveryConfig(ctx context.Context, cfg *models.VendorDeliveryConfig) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "vendor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled", "charge_type", "flat_charge", "rate_per_km",
				"max_delivery_km", "free_above_amount", "updated_at",
			}),
		}).
		Create(cfg).Error
}

func (r *repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

func (r *repository) List(ctx context.Context) ([]models.Vendor, error) {
	var list []models.Vendor
	err := r.db.WithContext(ctx).
		Preload("DeliveryConfig").
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
