package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// RentalOrder is the confirmed materialization of a quotation. The
// unique index on quotation_id is the storage-level backstop for the
// at-most-one-order-per-quotation invariant. CouponCode is a snapshot
// taken at confirmation, not a live coupon reference, so historical
// orders stay stable when coupons are edited or deleted.
type RentalOrder struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID     uuid.UUID             `gorm:"column:quotation_id;type:uuid;not null;uniqueIndex:uq_rental_orders_quotation"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id;type:uuid;not null"`
	VendorID        uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null"`
	Vendor          *Vendor               `gorm:"foreignKey:VendorID"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'confirmed'"`
	FulfillmentType enums.FulfillmentType `gorm:"column:fulfillment_type;type:text;not null"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal       `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	DeliveryCharge  decimal.Decimal       `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	CouponCode      *string               `gorm:"column:coupon_code"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
