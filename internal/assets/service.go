package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/lib/pq"
)

// Service exposes asset catalog operations. Stock movements driven by
// purchases and requests live elsewhere; Update's quantity field is an
// administrative correction only.
type Service interface {
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*AssetView, error)
	Create(ctx context.Context, input CreateAssetInput) (*AssetView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAssetInput) (*AssetView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds the asset service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assets repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}
	views := make([]AssetView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return &ListResult{Assets: views, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssetView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}
	view := toView(*asset)
	return &view, nil
}

func (s *service) Create(ctx context.Context, input CreateAssetInput) (*AssetView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	asset := &models.Asset{
		ID:              uuid.New(),
		Name:            name,
		Quantity:        input.Quantity,
		Unit:            input.Unit,
		Category:        input.Category,
		Subcategory:     input.Subcategory,
		Brand:           input.Brand,
		Tags:            pq.StringArray(input.Tags),
		PhotoPath:       input.PhotoPath,
		AssignedToEmail: normalizeEmailPtr(input.AssignedToEmail),
	}
	if asset.Tags == nil {
		asset.Tags = pq.StringArray{}
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
	}
	view := toView(*asset)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAssetInput) (*AssetView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Subcategory != nil {
		updates["subcategory"] = *input.Subcategory
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.PhotoPath != nil {
		updates["photo_path"] = *input.PhotoPath
	}
	if input.AssignedToEmail != nil {
		if *input.AssignedToEmail == "" {
			updates["assigned_to_email"] = nil
		} else {
			updates["assigned_to_email"] = strings.ToLower(strings.TrimSpace(*input.AssignedToEmail))
		}
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	matched, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	matched, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}
	return nil
}

func normalizeEmailPtr(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}
