package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalPrice associates a product variant with a rental period rate.
type RentalPrice struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_rental_prices_variant_period"`
	PeriodID  uuid.UUID       `gorm:"column:period_id;type:uuid;not null;uniqueIndex:uq_rental_prices_variant_period"`
	Period    *RentalPeriod   `gorm:"foreignKey:PeriodID"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
