package purchases

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/internal/assets"
	"github.com/assetline-io/assetline-backend/internal/ledger"
	"github.com/assetline-io/assetline-backend/internal/vendors"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/outbox"
)

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS assets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  unit TEXT,
  category TEXT,
  subcategory TEXT,
  brand TEXT,
  tags TEXT NOT NULL DEFAULT '{}',
  photo_path TEXT,
  assigned_to_email TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  company_name TEXT,
  phone TEXT,
  email TEXT,
  address TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  vendor_id TEXT,
  vendor_name TEXT,
  vendor_phone TEXT,
  vendor_address TEXT,
  purchase_price_cents INTEGER NOT NULL DEFAULT 0,
  due_amount_cents INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_by TEXT NOT NULL DEFAULT 'unknown',
  updated_by TEXT NOT NULL DEFAULT 'unknown',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchase_items (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL,
  asset_id TEXT NOT NULL,
  asset_name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	for _, table := range []string{"purchase_items", "purchases", "vendors", "assets"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type capturedOutbox struct {
	events []outbox.DomainEvent
}

func (c *capturedOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newPurchaseService(t *testing.T, db *gorm.DB, sink *capturedOutbox) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(db),
		assets.NewRepository(db),
		vendors.NewRepository(db),
		ledger.NewService(),
		gormTxRunner{db: db},
		sink,
	)
	require.NoError(t, err)
	return svc
}

func seedAsset(t *testing.T, db *gorm.DB, name string, qty int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO assets (id, name, quantity) VALUES (?, ?, ?)`,
		id.String(), name, qty,
	).Error)
	return id
}

func seedVendor(t *testing.T, db *gorm.DB, name string, phone *string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Exec(
		`INSERT INTO vendors (id, name, phone, status) VALUES (?, ?, ?, 'active')`,
		id.String(), name, phone,
	).Error)
	return id
}

func assetQuantity(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Raw(`SELECT quantity FROM assets WHERE id = ?`, id.String()).Scan(&qty).Error)
	return qty
}

func TestCreateAppliesStockAndSnapshotsVendor(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)
	ctx := context.Background()

	assetID := seedAsset(t, db, "Laptop", 20)
	vendorID := seedVendor(t, db, "Acme Supplies", nil)

	view, err := svc.Create(ctx, CreatePurchaseInput{
		VendorID: &vendorID,
		Items: []ItemInput{
			{AssetID: &assetID, Qty: 10, UnitPriceCents: 50000},
		},
		PurchasePriceCents: 500000,
		DueAmountCents:     100000,
		CreatedBy:          "Admin@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, assetQuantity(t, db, assetID))

	require.Len(t, view.Items, 1)
	assert.Equal(t, "Laptop", view.Items[0].AssetName)
	require.NotNil(t, view.VendorName)
	assert.Equal(t, "Acme Supplies", *view.VendorName)
	require.NotNil(t, view.VendorPhone)
	assert.Equal(t, "-", *view.VendorPhone)
	assert.Equal(t, "admin@example.com", view.CreatedBy)
	assert.Equal(t, "admin@example.com", view.UpdatedBy)

	require.Len(t, sink.events, 1)
	assert.Equal(t, enums.EventPurchaseRecorded, sink.events[0].EventType)
	assert.Equal(t, enums.AggregatePurchase, sink.events[0].AggregateType)
}

func TestCreateSkipsUnusableItems(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)
	ctx := context.Background()

	assetID := seedAsset(t, db, "Monitor", 5)

	view, err := svc.Create(ctx, CreatePurchaseInput{
		Items: []ItemInput{
			{AssetID: nil, Qty: 3},
			{AssetID: &assetID, Qty: 0},
			{AssetID: &assetID, Qty: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Qty)
	assert.Equal(t, 7, assetQuantity(t, db, assetID))
	assert.Equal(t, "unknown", view.CreatedBy)
}

func TestCreateAllItemsUnusable(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)

	_, err := svc.Create(context.Background(), CreatePurchaseInput{
		Items: []ItemInput{{AssetID: nil, Qty: 3}},
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestUpdateReversesOldQuantitiesThenAppliesNew(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)
	ctx := context.Background()

	assetID := seedAsset(t, db, "Laptop", 20)

	created, err := svc.Create(ctx, CreatePurchaseInput{
		Items:     []ItemInput{{AssetID: &assetID, Qty: 10}},
		CreatedBy: "admin@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, 30, assetQuantity(t, db, assetID))

	updated, err := svc.Update(ctx, UpdatePurchaseInput{
		PurchaseID: created.ID,
		Items:      []ItemInput{{AssetID: &assetID, Qty: 4}},
		UpdatedBy:  "clerk@example.com",
	})
	require.NoError(t, err)

	// 30 - 10 + 4
	assert.Equal(t, 24, assetQuantity(t, db, assetID))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 4, updated.Items[0].Qty)
	assert.Equal(t, "clerk@example.com", updated.UpdatedBy)
	assert.Equal(t, "admin@example.com", updated.CreatedBy)
}

func TestDeleteReversesAllItems(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)
	ctx := context.Background()

	assetID := seedAsset(t, db, "Laptop", 20)
	created, err := svc.Create(ctx, CreatePurchaseInput{
		Items: []ItemInput{{AssetID: &assetID, Qty: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 24, assetQuantity(t, db, assetID))

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 20, assetQuantity(t, db, assetID))

	_, err = svc.Get(ctx, created.ID)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestDeleteBlockedWhenStockAlreadyConsumed(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)
	ctx := context.Background()

	assetID := seedAsset(t, db, "Cable", 0)
	created, err := svc.Create(ctx, CreatePurchaseInput{
		Items: []ItemInput{{AssetID: &assetID, Qty: 10}},
	})
	require.NoError(t, err)

	// most of the restock has since been handed out
	require.NoError(t, db.Exec(`UPDATE assets SET quantity = 3 WHERE id = ?`, assetID.String()).Error)

	err = svc.Delete(ctx, created.ID)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())

	// rollback kept the purchase and the remaining stock
	assert.Equal(t, 3, assetQuantity(t, db, assetID))
	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}

func TestCreateWithUnknownVendorIsNotFound(t *testing.T) {
	db := setupPurchasesTestDB(t)
	sink := &capturedOutbox{}
	svc := newPurchaseService(t, db, sink)

	assetID := seedAsset(t, db, "Desk", 1)
	vendorID := uuid.New()

	_, err := svc.Create(context.Background(), CreatePurchaseInput{
		VendorID: &vendorID,
		Items:    []ItemInput{{AssetID: &assetID, Qty: 1}},
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}
