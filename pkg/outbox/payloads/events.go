package payloads

import (
	"time"

	"github.com/google/uuid"
)

// RequestSubmittedEvent signals a new pending asset request.
type RequestSubmittedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	AssetID   uuid.UUID `json:"asset_id"`
	AssetName string    `json:"asset_name"`
	UserEmail string    `json:"user_email"`
	Quantity  int       `json:"quantity"`
}

// RequestApprovedEvent is emitted when an admin approves a request and the
// stock decrement has been committed.
type RequestApprovedEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	AssetID     uuid.UUID `json:"asset_id"`
	AssetName   string    `json:"asset_name"`
	UserEmail   string    `json:"user_email"`
	Quantity    int       `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	ApprovedBy  string    `json:"approved_by"`
	SentByAdmin bool      `json:"sent_by_admin"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// PurchaseRecordedEvent surfaces a committed restock.
type PurchaseRecordedEvent struct {
	PurchaseID uuid.UUID `json:"purchase_id"`
	VendorName string    `json:"vendor_name,omitempty"`
	ItemCount  int       `json:"item_count"`
	CreatedBy  string    `json:"created_by"`
}

// NotificationRequestedEvent tells downstream systems to email a user.
type NotificationRequestedEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	UserEmail string    `json:"user_email"`
	Type      string    `json:"type"`
}
