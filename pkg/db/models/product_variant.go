package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a specific rentable configuration of a product,
// carrying its own stock and rental rates.
type ProductVariant struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Product      *Product      `gorm:"foreignKey:ProductID"`
	SKU          string        `gorm:"column:sku;not null;uniqueIndex"`
	Name         string        `gorm:"column:name;not null"`
	StockQty     int           `gorm:"column:stock_qty;not null;default:0"`
	RentalPrices []RentalPrice `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
