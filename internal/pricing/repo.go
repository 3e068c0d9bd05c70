package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rate source bound to the provided DB.
func NewRepository(db *gorm.DB) RateSource {
	return &repository{db: db}
}

func (r *repository) FindRatesByVariant(ctx context.Context, variantID uuid.UUID) ([]models.RentalPrice, error) {
	var rates []models.RentalPrice
	err := r.db.WithContext(ctx).
		Preload("Period").
		Where("variant_id = ?", variantID).
		Order("created_at ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}
