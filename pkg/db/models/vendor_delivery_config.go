package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// VendorDeliveryConfig captures a vendor's delivery billing policy.
type VendorDeliveryConfig struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID        uuid.UUID                `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex"`
	Enabled         bool                     `gorm:"column:enabled;not null;default:false"`
	ChargeType      enums.DeliveryChargeType `gorm:"column:charge_type;type:text;not null;default:'free'"`
	FlatCharge      decimal.Decimal          `gorm:"column:flat_charge;type:numeric(12,2);not null;default:0"`
	RatePerKm       decimal.Decimal          `gorm:"column:rate_per_km;type:numeric(12,2);not null;default:0"`
	MaxDeliveryKm   *float64                 `gorm:"column:max_delivery_km"`
	FreeAboveAmount *decimal.Decimal         `gorm:"column:free_above_amount;type:numeric(12,2)"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
