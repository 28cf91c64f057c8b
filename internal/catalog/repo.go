package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
)

// Repository wires together category, subcategory, and brand persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) RenameCategory(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]models.Subcategory, error) {
	qb := r.db.WithContext(ctx).Order("name ASC")
	if categoryID != nil {
		qb = qb.Where("category_id = ?", *categoryID)
	}
	var rows []models.Subcategory
	err := qb.Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) error {
	return r.db.WithContext(ctx).Create(subcategory).Error
}

func (r *Repository) RenameSubcategory(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Subcategory{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteSubcategory(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Subcategory{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var rows []models.Brand
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *Repository) RenameBrand(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteBrand(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Brand{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
