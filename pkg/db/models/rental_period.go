package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// RentalPeriod is an admin-configured billing unit, e.g. "1 day".
type RentalPeriod struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Duration  int              `gorm:"column:duration;not null;default:1"`
	Unit      enums.RentalUnit `gorm:"column:unit;type:text;not null"`
	Active    bool             `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
