package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/enums"
)

// Vendor is a supplier record.
type Vendor struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	CompanyName *string            `gorm:"column:company_name"`
	Phone       *string            `gorm:"column:phone"`
	Email       *string            `gorm:"column:email"`
	Address     *string            `gorm:"column:address"`
	Status      enums.VendorStatus `gorm:"column:status;type:vendor_status_enum;not null;default:'active'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
