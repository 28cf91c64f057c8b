package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase records a vendor restock. Vendor phone/address are snapshotted at
// creation so later vendor edits never rewrite purchase history.
type Purchase struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID           *uuid.UUID     `gorm:"column:vendor_id;type:uuid;index"`
	VendorName         *string        `gorm:"column:vendor_name"`
	VendorPhone        *string        `gorm:"column:vendor_phone"`
	VendorAddress      *string        `gorm:"column:vendor_address"`
	PurchasePriceCents int64          `gorm:"column:purchase_price_cents;not null;default:0"`
	DueAmountCents     int64          `gorm:"column:due_amount_cents;not null;default:0"`
	Notes              *string        `gorm:"column:notes"`
	CreatedBy          string         `gorm:"column:created_by;not null;default:'unknown'"`
	UpdatedBy          string         `gorm:"column:updated_by;not null;default:'unknown'"`
	Items              []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
