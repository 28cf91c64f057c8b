package assets

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

// CreateAssetInput carries the fields accepted when registering an asset.
type CreateAssetInput struct {
	Name            string
	Quantity        int
	Unit            *string
	Category        *string
	Subcategory     *string
	Brand           *string
	Tags            []string
	PhotoPath       *string
	AssignedToEmail *string
}

// UpdateAssetInput is a partial update; nil fields are left untouched.
// Quantity here is an administrative override, not a stock movement.
type UpdateAssetInput struct {
	Name            *string
	Quantity        *int
	Unit            *string
	Category        *string
	Subcategory     *string
	Brand           *string
	Tags            []string
	PhotoPath       *string
	AssignedToEmail *string
}

// ListFilters narrows asset listings.
type ListFilters struct {
	Query           string
	Category        *string
	Brand           *string
	AssignedToEmail *string
}

// ListQuery combines filters with cursor pagination.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of assets plus the cursor for the next page.
type ListResult struct {
	Assets     []AssetView
	NextCursor string
}

// AssetView is the read model returned by list and get operations.
type AssetView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Quantity        int       `json:"quantity"`
	Unit            *string   `json:"unit,omitempty"`
	Category        *string   `json:"category,omitempty"`
	Subcategory     *string   `json:"subcategory,omitempty"`
	Brand           *string   `json:"brand,omitempty"`
	Tags            []string  `json:"tags"`
	PhotoPath       *string   `json:"photo_path,omitempty"`
	AssignedToEmail *string   `json:"assigned_to_email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toView(asset models.Asset) AssetView {
	tags := []string(asset.Tags)
	if tags == nil {
		tags = []string{}
	}
	return AssetView{
		ID:              asset.ID,
		Name:            asset.Name,
		Quantity:        asset.Quantity,
		Unit:            asset.Unit,
		Category:        asset.Category,
		Subcategory:     asset.Subcategory,
		Brand:           asset.Brand,
		Tags:            tags,
		PhotoPath:       asset.PhotoPath,
		AssignedToEmail: asset.AssignedToEmail,
		CreatedAt:       asset.CreatedAt,
		UpdatedAt:       asset.UpdatedAt,
	}
}
