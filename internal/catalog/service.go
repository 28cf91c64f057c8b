package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

// Service exposes CRUD for the free-form asset taxonomy: categories,
// subcategories, and brands. Assets reference these by name, so deleting a
// taxonomy entry never cascades into asset rows.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error)
	CreateSubcategory(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Subcategory, error)
	RenameSubcategory(ctx context.Context, id uuid.UUID, name string) error
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	ListBrands(ctx context.Context) ([]models.Brand, error)
	CreateBrand(ctx context.Context, name string) (*models.Brand, error)
	RenameBrand(ctx context.Context, id uuid.UUID, name string) error
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindCategoryByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category name")
	}

	category := &models.Category{ID: uuid.New(), Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if isDuplicate(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	matched, err := s.repo.RenameCategory(ctx, id, name)
	if err != nil {
		if isDuplicate(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename category")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	matched, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

func (s *service) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	rows, err := s.repo.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subcategories")
	}
	return rows, nil
}

func (s *service) CreateSubcategory(ctx context.Context, name string, categoryID *uuid.UUID) (*models.Subcategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	subcategory := &models.Subcategory{ID: uuid.New(), Name: name, CategoryID: categoryID}
	if err := s.repo.CreateSubcategory(ctx, subcategory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subcategory")
	}
	return subcategory, nil
}

func (s *service) RenameSubcategory(ctx context.Context, id uuid.UUID, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	matched, err := s.repo.RenameSubcategory(ctx, id, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename subcategory")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
	}
	return nil
}

func (s *service) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	matched, err := s.repo.DeleteSubcategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete subcategory")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
	}
	return nil
}

func (s *service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	rows, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return rows, nil
}

func (s *service) CreateBrand(ctx context.Context, name string) (*models.Brand, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBrandByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check brand name")
	}

	brand := &models.Brand{ID: uuid.New(), Name: name}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		if isDuplicate(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create brand")
	}
	return brand, nil
}

func (s *service) RenameBrand(ctx context.Context, id uuid.UUID, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	matched, err := s.repo.RenameBrand(ctx, id, name)
	if err != nil {
		if isDuplicate(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename brand")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	return nil
}

func (s *service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	matched, err := s.repo.DeleteBrand(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete brand")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	return nil
}

func normalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	return trimmed, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
