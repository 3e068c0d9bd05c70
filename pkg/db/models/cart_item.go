package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a pending rental line. The unit price is frozen at
// add-to-cart time and never recomputed on read. (cart_id, variant_id,
// rental_start, rental_end) is the natural key: re-adding the same
// interval merges quantity instead of inserting a second row.
type CartItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_natural_key"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:uq_cart_items_natural_key"`
	VendorID    uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	RentalStart time.Time       `gorm:"column:rental_start;not null;uniqueIndex:uq_cart_items_natural_key"`
	RentalEnd   time.Time       `gorm:"column:rental_end;not null;uniqueIndex:uq_cart_items_natural_key"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LineSubtotal is the frozen unit price times quantity.
func (c CartItem) LineSubtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
