package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Asset is the stocked inventory entity. Quantity is the single on-hand
// counter adjusted by purchases and approved requests.
type Asset struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string         `gorm:"column:name;not null"`
	Quantity        int            `gorm:"column:quantity;not null;default:0"`
	Unit            *string        `gorm:"column:unit"`
	Category        *string        `gorm:"column:category"`
	Subcategory     *string        `gorm:"column:subcategory"`
	Brand           *string        `gorm:"column:brand"`
	Tags            pq.StringArray `gorm:"type:text[];column:tags;not null;default:ARRAY[]::text[]"`
	PhotoPath       *string        `gorm:"column:photo_path"`
	AssignedToEmail *string        `gorm:"column:assigned_to_email;index"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
