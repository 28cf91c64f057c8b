package models

import (
	"time"

	"github.com/google/uuid"
)

// Subcategory refines a Category.
type Subcategory struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid;index"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
