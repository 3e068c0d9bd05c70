package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationItem is a rental line copied verbatim from the cart at
// submission time; quantity, interval, and price are never recomputed.
type QuotationItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID uuid.UUID       `gorm:"column:quotation_id;type:uuid;not null"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID"`
	Quantity    int             `gorm:"column:quantity;not null"`
	RentalStart time.Time       `gorm:"column:rental_start;not null"`
	RentalEnd   time.Time       `gorm:"column:rental_end;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
