package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// Coupon is an admin-managed discount code. MaxDiscount only applies
// to percentage coupons.
type Coupon struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code        string           `gorm:"column:code;not null;uniqueIndex"`
	Type        enums.CouponType `gorm:"column:type;type:text;not null"`
	Value       decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null"`
	MaxDiscount *decimal.Decimal `gorm:"column:max_discount;type:numeric(12,2)"`
	Active      bool             `gorm:"column:active;not null;default:true"`
	ValidFrom   time.Time        `gorm:"column:valid_from;not null"`
	ValidUntil  time.Time        `gorm:"column:valid_until;not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsUsableAt reports whether the coupon can be applied at the given time.
func (c Coupon) IsUsableAt(at time.Time) bool {
	if !c.Active {
		return false
	}
	if at.Before(c.ValidFrom) {
		return false
	}
	return !at.After(c.ValidUntil)
}
