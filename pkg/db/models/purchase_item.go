package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseItem is a restock line. AssetName is a readable snapshot resolved
// when the line is applied to stock.
type PurchaseItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID     uuid.UUID `gorm:"column:purchase_id;type:uuid;not null;index"`
	AssetID        uuid.UUID `gorm:"column:asset_id;type:uuid;not null;index"`
	AssetName      string    `gorm:"column:asset_name;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
