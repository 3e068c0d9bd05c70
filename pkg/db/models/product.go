package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a rentable catalog entry owned by a vendor.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID    uuid.UUID        `gorm:"column:vendor_id;type:uuid;not null"`
	Vendor      *Vendor          `gorm:"foreignKey:VendorID"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	Category    string           `gorm:"column:category;not null;default:''"`
	Published   bool             `gorm:"column:published;not null;default:false"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
