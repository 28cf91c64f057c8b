package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email      string         `gorm:"type:text;not null;uniqueIndex"`
	Name       string         `gorm:"column:name;not null"`
	Role       enums.UserRole `gorm:"column:role;type:user_role_enum;not null;default:'office-user'"`
	ExternalID *string        `gorm:"column:external_id"`
	PhotoPath  *string        `gorm:"column:photo_path"`
	Department *string        `gorm:"column:department"`
	Position   *string        `gorm:"column:position"`
	Phone      *string        `gorm:"column:phone"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
