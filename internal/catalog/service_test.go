package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS subcategories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	require.NoError(t, db.Exec(`DELETE FROM subcategories`).Error)
	require.NoError(t, db.Exec(`DELETE FROM categories`).Error)
	require.NoError(t, db.Exec(`DELETE FROM brands`).Error)

	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCategoryLifecycle(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, "  Electronics ")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", created.Name)

	_, err = svc.CreateCategory(ctx, "Electronics")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	require.NoError(t, svc.RenameCategory(ctx, created.ID, "Office Electronics"))

	rows, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Office Electronics", rows[0].Name)

	require.NoError(t, svc.DeleteCategory(ctx, created.ID))
	err = svc.DeleteCategory(ctx, created.ID)
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestSubcategoryScopedListing(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, "Furniture")
	require.NoError(t, err)

	_, err = svc.CreateSubcategory(ctx, "Desks", &parent.ID)
	require.NoError(t, err)
	_, err = svc.CreateSubcategory(ctx, "Misc", nil)
	require.NoError(t, err)

	scoped, err := svc.ListSubcategories(ctx, &parent.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Desks", scoped[0].Name)

	all, err := svc.ListSubcategories(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBrandDuplicateName(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	_, err := svc.CreateBrand(ctx, "Dell")
	require.NoError(t, err)

	_, err = svc.CreateBrand(ctx, "Dell")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	err = svc.RenameBrand(ctx, uuid.New(), "HP")
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCatalogNameValidation(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	_, err := svc.CreateCategory(context.Background(), "   ")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
