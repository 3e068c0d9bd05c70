package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a rental equipment provider on the marketplace.
type Vendor struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID             `gorm:"column:owner_id;type:uuid;not null"`
	Name            string                `gorm:"column:name;not null"`
	CompanyName     *string               `gorm:"column:company_name"`
	Email           string                `gorm:"column:email;not null"`
	Phone           *string               `gorm:"column:phone"`
	PickupAddressID *uuid.UUID            `gorm:"column:pickup_address_id;type:uuid"`
	PickupAddress   *Address              `gorm:"foreignKey:PickupAddressID"`
	DeliveryConfig  *VendorDeliveryConfig `gorm:"foreignKey:VendorID"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// DisplayName prefers the registered company name over the contact name.
func (v Vendor) DisplayName() string {
	if v.CompanyName != nil && *v.CompanyName != "" {
		return *v.CompanyName
	}
	return v.Name
}
