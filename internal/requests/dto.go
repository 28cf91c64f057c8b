package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

// SubmitInput is an office user's claim on stock.
type SubmitInput struct {
	AssetID   uuid.UUID
	Quantity  int
	UserEmail string
	ActorID   uuid.UUID
	ActorRole string
}

// ApproveInput records which admin approved a pending request.
type ApproveInput struct {
	RequestID  uuid.UUID
	ApprovedBy string
	ActorID    uuid.UUID
	ActorRole  string
}

// CreateAndApproveInput lets an admin hand an asset to a user directly,
// skipping the pending state.
type CreateAndApproveInput struct {
	AssetID    uuid.UUID
	Quantity   int
	UserEmail  string
	AdminEmail string
	ActorID    uuid.UUID
	ActorRole  string
}

// ListFilters narrows request listings.
type ListFilters struct {
	Status    *enums.RequestStatus
	UserEmail *string
}

// ListQuery combines filters with cursor pagination.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of requests plus the cursor for the next page.
type ListResult struct {
	Requests   []RequestView
	NextCursor string
}

// RequestView is the read model returned by list and get operations.
type RequestView struct {
	ID          uuid.UUID           `json:"id"`
	AssetID     uuid.UUID           `json:"asset_id"`
	AssetName   string              `json:"asset_name"`
	UserEmail   string              `json:"user_email"`
	Quantity    int                 `json:"quantity"`
	Unit        *string             `json:"unit,omitempty"`
	Category    *string             `json:"category,omitempty"`
	Subcategory *string             `json:"subcategory,omitempty"`
	Status      enums.RequestStatus `json:"status"`
	ApprovedBy  *string             `json:"approved_by,omitempty"`
	SentByAdmin bool                `json:"sent_by_admin"`
	RequestDate time.Time           `json:"request_date"`
	SentDate    *time.Time          `json:"sent_date,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toView(request models.AssetRequest) RequestView {
	return RequestView{
		ID:          request.ID,
		AssetID:     request.AssetID,
		AssetName:   request.AssetName,
		UserEmail:   request.UserEmail,
		Quantity:    request.Quantity,
		Unit:        request.Unit,
		Category:    request.Category,
		Subcategory: request.Subcategory,
		Status:      request.Status,
		ApprovedBy:  request.ApprovedBy,
		SentByAdmin: request.SentByAdmin,
		RequestDate: request.RequestDate,
		SentDate:    request.SentDate,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}
