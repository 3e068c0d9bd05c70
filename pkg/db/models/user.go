package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentkart/rentkart-backend/pkg/enums"
)

// User is a platform account (customer, vendor member, or admin).
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
