package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// Quotation is a vendor-scoped proposal generated from a customer's
// cart. A quotation always belongs to exactly one customer and one
// vendor; a multi-vendor cart yields one quotation per vendor.
type Quotation struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID        uuid.UUID             `gorm:"column:customer_id;type:uuid;not null"`
	VendorID          uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null"`
	Vendor            *Vendor               `gorm:"foreignKey:VendorID"`
	Status            enums.QuotationStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	FulfillmentType   enums.FulfillmentType `gorm:"column:fulfillment_type;type:text;not null;default:'store_pickup'"`
	DeliveryCharge    decimal.Decimal       `gorm:"column:delivery_charge;type:numeric(12,2);not null;default:0"`
	CouponID          *uuid.UUID            `gorm:"column:coupon_id;type:uuid"`
	Coupon            *Coupon               `gorm:"foreignKey:CouponID"`
	DeliveryAddressID *uuid.UUID            `gorm:"column:delivery_address_id;type:uuid"`
	BillingAddressID  *uuid.UUID            `gorm:"column:billing_address_id;type:uuid"`
	Items             []QuotationItem       `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	SentAt            *time.Time            `gorm:"column:sent_at"`
	ConfirmedAt       *time.Time            `gorm:"column:confirmed_at"`
	CancelledAt       *time.Time            `gorm:"column:cancelled_at"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemSubtotal sums quantity times frozen unit price across items.
func (q Quotation) ItemSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}
