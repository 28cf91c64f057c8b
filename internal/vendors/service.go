package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

// CreateVendorInput carries the fields accepted when registering a vendor.
type CreateVendorInput struct {
	Name        string
	CompanyName *string
	Phone       *string
	Email       *string
	Address     *string
	Status      *enums.VendorStatus
}

// UpdateVendorInput is a partial update; nil fields are left untouched.
type UpdateVendorInput struct {
	Name        *string
	CompanyName *string
	Phone       *string
	Email       *string
	Address     *string
	Status      *enums.VendorStatus
}

// VendorView is the read model returned to callers.
type VendorView struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	CompanyName *string            `json:"company_name,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Email       *string            `json:"email,omitempty"`
	Address     *string            `json:"address,omitempty"`
	Status      enums.VendorStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Service exposes vendor CRUD.
type Service interface {
	List(ctx context.Context) ([]VendorView, error)
	Get(ctx context.Context, id uuid.UUID) (*VendorView, error)
	Create(ctx context.Context, input CreateVendorInput) (*VendorView, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*VendorView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendors repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]VendorView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	views := make([]VendorView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VendorView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	view := toView(*vendor)
	return &view, nil
}

func (s *service) Create(ctx context.Context, input CreateVendorInput) (*VendorView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
	}

	status := enums.VendorStatusActive
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor status")
		}
		status = *input.Status
	}

	vendor := &models.Vendor{
		ID:          uuid.New(),
		Name:        name,
		CompanyName: input.CompanyName,
		Phone:       input.Phone,
		Email:       normalizeEmailPtr(input.Email),
		Address:     input.Address,
		Status:      status,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
	}
	view := toView(*vendor)
	return &view, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*VendorView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name cannot be empty")
		}
		updates["name"] = name
	}
	if input.CompanyName != nil {
		updates["company_name"] = *input.CompanyName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor status")
		}
		updates["status"] = *input.Status
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	matched, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	matched, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vendor")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return nil
}

func toView(vendor models.Vendor) VendorView {
	return VendorView{
		ID:          vendor.ID,
		Name:        vendor.Name,
		CompanyName: vendor.CompanyName,
		Phone:       vendor.Phone,
		Email:       vendor.Email,
		Address:     vendor.Address,
		Status:      vendor.Status,
		CreatedAt:   vendor.CreatedAt,
		UpdatedAt:   vendor.UpdatedAt,
	}
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
