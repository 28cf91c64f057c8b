package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/enums"
)

// AssetRequest tracks a user's claim on stocked inventory. AssetName is a
// denormalized snapshot taken at submission time.
type AssetRequest struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID     uuid.UUID           `gorm:"column:asset_id;type:uuid;not null;index"`
	AssetName   string              `gorm:"column:asset_name;not null"`
	UserEmail   string              `gorm:"column:user_email;not null;index"`
	Quantity    int                 `gorm:"column:quantity;not null"`
	Unit        *string             `gorm:"column:unit"`
	Category    *string             `gorm:"column:category"`
	Subcategory *string             `gorm:"column:subcategory"`
	Status      enums.RequestStatus `gorm:"column:status;type:request_status_enum;not null;default:'pending'"`
	ApprovedBy  *string             `gorm:"column:approved_by"`
	UpdatedBy   *string             `gorm:"column:updated_by"`
	SentByAdmin bool                `gorm:"column:sent_by_admin;not null;default:false"`
	RequestDate time.Time           `gorm:"column:request_date;autoCreateTime"`
	SentDate    *time.Time          `gorm:"column:sent_date"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
