package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/enums"
)

// Repository runs the read-only aggregation queries behind reports.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type dashboardRow struct {
	TotalQuantity      int64
	ApprovedCount      int64
	PendingCount       int64
	PurchaseTotalCents int64
	DueTotalCents      int64
}

const dashboardQuery = `
SELECT
  (SELECT COALESCE(SUM(quantity), 0) FROM assets) AS total_quantity,
  (SELECT COUNT(1) FROM asset_requests WHERE status = 'approved') AS approved_count,
  (SELECT COUNT(1) FROM asset_requests WHERE status = 'pending') AS pending_count,
  (SELECT COALESCE(SUM(purchase_price_cents), 0) FROM purchases) AS purchase_total_cents,
  (SELECT COALESCE(SUM(due_amount_cents), 0) FROM purchases) AS due_total_cents
`

func (r *Repository) DashboardTotals(ctx context.Context) (*dashboardRow, error) {
	var row dashboardRow
	if err := r.db.WithContext(ctx).Raw(dashboardQuery).Scan(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// RequestRegisterRow joins a request with the requester and approver names.
type RequestRegisterRow struct {
	RequestID     uuid.UUID
	AssetID       uuid.UUID
	AssetName     string
	UserEmail     string
	RequesterName *string
	Quantity      int
	Status        enums.RequestStatus
	ApprovedBy    *string
	ApproverName  *string
	RequestDate   time.Time
	SentDate      *time.Time
}

const requestRegisterQuery = `
SELECT r.id AS request_id,
       r.asset_id,
       r.asset_name,
       r.user_email,
       requester.name AS requester_name,
       r.quantity,
       r.status,
       r.approved_by,
       approver.name AS approver_name,
       r.request_date,
       r.sent_date
FROM asset_requests r
LEFT JOIN users requester ON requester.email = r.user_email
LEFT JOIN users approver ON approver.email = r.approved_by
ORDER BY r.created_at DESC
`

func (r *Repository) RequestRegister(ctx context.Context) ([]RequestRegisterRow, error) {
	var rows []RequestRegisterRow
	if err := r.db.WithContext(ctx).Raw(requestRegisterQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PurchaseRegisterRow joins a purchase with its current vendor record.
// Snapshot columns on the purchase win over the live vendor row.
type PurchaseRegisterRow struct {
	PurchaseID         uuid.UUID
	VendorName         *string
	VendorPhone        *string
	VendorStatus       *enums.VendorStatus
	PurchasePriceCents int64
	DueAmountCents     int64
	ItemCount          int
	CreatedBy          string
	CreatedAt          time.Time
}

const purchaseRegisterQuery = `
SELECT p.id AS purchase_id,
       COALESCE(p.vendor_name, v.name) AS vendor_name,
       COALESCE(p.vendor_phone, v.phone) AS vendor_phone,
       v.status AS vendor_status,
       p.purchase_price_cents,
       p.due_amount_cents,
       (SELECT COUNT(1) FROM purchase_items i WHERE i.purchase_id = p.id) AS item_count,
       p.created_by,
       p.created_at
FROM purchases p
LEFT JOIN vendors v ON v.id = p.vendor_id
ORDER BY p.created_at DESC
`

func (r *Repository) PurchaseRegister(ctx context.Context) ([]PurchaseRegisterRow, error) {
	var rows []PurchaseRegisterRow
	if err := r.db.WithContext(ctx).Raw(purchaseRegisterQuery).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
