package purchases

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

// ItemInput is one restock line as submitted. Lines without an asset
// reference or a positive quantity are skipped, not rejected.
type ItemInput struct {
	AssetID        *uuid.UUID
	Qty            int
	UnitPriceCents int64
}

// CreatePurchaseInput carries the fields accepted when recording a restock.
type CreatePurchaseInput struct {
	VendorID           *uuid.UUID
	Items              []ItemInput
	PurchasePriceCents int64
	DueAmountCents     int64
	Notes              *string
	CreatedBy          string
	ActorID            uuid.UUID
	ActorRole          string
}

// UpdatePurchaseInput rewrites a purchase. The previous item quantities are
// reversed out of stock before the new ones are applied.
type UpdatePurchaseInput struct {
	PurchaseID         uuid.UUID
	VendorID           *uuid.UUID
	Items              []ItemInput
	PurchasePriceCents int64
	DueAmountCents     int64
	Notes              *string
	UpdatedBy          string
}

// ListQuery pages through purchases.
type ListQuery struct {
	Pagination pagination.Params
	VendorID   *uuid.UUID
}

// ListResult is one page of purchases plus the cursor for the next page.
type ListResult struct {
	Purchases  []PurchaseView
	NextCursor string
}

// ItemView is the read model for one restock line.
type ItemView struct {
	ID             uuid.UUID `json:"id"`
	AssetID        uuid.UUID `json:"asset_id"`
	AssetName      string    `json:"asset_name"`
	Qty            int       `json:"qty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// PurchaseView is the read model returned by list and get operations.
type PurchaseView struct {
	ID                 uuid.UUID  `json:"id"`
	VendorID           *uuid.UUID `json:"vendor_id,omitempty"`
	VendorName         *string    `json:"vendor_name,omitempty"`
	VendorPhone        *string    `json:"vendor_phone,omitempty"`
	VendorAddress      *string    `json:"vendor_address,omitempty"`
	PurchasePriceCents int64      `json:"purchase_price_cents"`
	DueAmountCents     int64      `json:"due_amount_cents"`
	Notes              *string    `json:"notes,omitempty"`
	CreatedBy          string     `json:"created_by"`
	UpdatedBy          string     `json:"updated_by"`
	Items              []ItemView `json:"items"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toView(purchase models.Purchase) PurchaseView {
	items := make([]ItemView, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		items = append(items, ItemView{
			ID:             item.ID,
			AssetID:        item.AssetID,
			AssetName:      item.AssetName,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return PurchaseView{
		ID:                 purchase.ID,
		VendorID:           purchase.VendorID,
		VendorName:         purchase.VendorName,
		VendorPhone:        purchase.VendorPhone,
		VendorAddress:      purchase.VendorAddress,
		PurchasePriceCents: purchase.PurchasePriceCents,
		DueAmountCents:     purchase.DueAmountCents,
		Notes:              purchase.Notes,
		CreatedBy:          purchase.CreatedBy,
		UpdatedBy:          purchase.UpdatedBy,
		Items:              items,
		CreatedAt:          purchase.CreatedAt,
		UpdatedAt:          purchase.UpdatedAt,
	}
}
