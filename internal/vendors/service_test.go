package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

func setupVendorsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	vendors := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  company_name TEXT,
  phone TEXT,
  email TEXT,
  address TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vendors).Error)
	require.NoError(t, db.Exec(`DELETE FROM vendors`).Error)

	return db
}

func newVendorService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestVendorLifecycle(t *testing.T) {
	db := setupVendorsTestDB(t)
	svc := newVendorService(t, db)
	ctx := context.Background()

	email := "Sales@Acme.COM"
	created, err := svc.Create(ctx, CreateVendorInput{Name: "Acme Supplies", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, enums.VendorStatusActive, created.Status)
	require.NotNil(t, created.Email)
	assert.Equal(t, "sales@acme.com", *created.Email)

	phone := "555-0100"
	archived := enums.VendorStatusArchived
	updated, err := svc.Update(ctx, created.ID, UpdateVendorInput{Phone: &phone, Status: &archived})
	require.NoError(t, err)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "555-0100", *updated.Phone)
	assert.Equal(t, enums.VendorStatusArchived, updated.Status)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestVendorValidation(t *testing.T) {
	db := setupVendorsTestDB(t)
	svc := newVendorService(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateVendorInput{Name: "   "})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	bad := enums.VendorStatus("closed")
	_, err = svc.Create(ctx, CreateVendorInput{Name: "Globex", Status: &bad})
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	err = svc.Delete(ctx, uuid.New())
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
