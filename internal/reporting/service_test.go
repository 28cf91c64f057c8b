package reporting

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReportingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS assets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  unit TEXT, category TEXT, subcategory TEXT, brand TEXT,
  tags TEXT NOT NULL DEFAULT '{}',
  photo_path TEXT, assigned_to_email TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'office-user',
  external_id TEXT, photo_path TEXT, department TEXT, position TEXT, phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS asset_requests (
  id TEXT PRIMARY KEY,
  asset_id TEXT NOT NULL,
  asset_name TEXT NOT NULL,
  user_email TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit TEXT, category TEXT, subcategory TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  approved_by TEXT, updated_by TEXT,
  sent_by_admin INTEGER NOT NULL DEFAULT 0,
  request_date DATETIME, sent_date DATETIME,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  company_name TEXT, phone TEXT, email TEXT, address TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  vendor_id TEXT, vendor_name TEXT, vendor_phone TEXT, vendor_address TEXT,
  purchase_price_cents INTEGER NOT NULL DEFAULT 0,
  due_amount_cents INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_by TEXT NOT NULL DEFAULT 'unknown',
  updated_by TEXT NOT NULL DEFAULT 'unknown',
  created_at DATETIME, updated_at DATETIME
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
	for _, table := range []string{"purchase_items", "purchases", "vendors", "asset_requests", "users", "assets"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	return db
}

func newReportingService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedReportingData(t *testing.T, db *gorm.DB) {
	t.Helper()

	assetID := uuid.NewString()
	require.NoError(t, db.Exec(`INSERT INTO assets (id, name, quantity) VALUES (?, 'Laptop', 24)`, assetID).Error)
	require.NoError(t, db.Exec(`INSERT INTO assets (id, name, quantity) VALUES (?, 'Desk', 6)`, uuid.NewString()).Error)

	require.NoError(t, db.Exec(
		`INSERT INTO users (id, email, name, role) VALUES (?, 'jane@example.com', 'Jane Doe', 'office-user')`,
		uuid.NewString(),
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO users (id, email, name, role) VALUES (?, 'admin@example.com', 'Ada Admin', 'admin')`,
		uuid.NewString(),
	).Error)

	require.NoError(t, db.Exec(
		`INSERT INTO asset_requests (id, asset_id, asset_name, user_email, quantity, status, approved_by, request_date, sent_date, created_at)
		 VALUES (?, ?, 'Laptop', 'jane@example.com', 2, 'approved', 'admin@example.com', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		uuid.NewString(), assetID,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO asset_requests (id, asset_id, asset_name, user_email, quantity, status, request_date, created_at)
		 VALUES (?, ?, 'Laptop', 'jane@example.com', 1, 'pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		uuid.NewString(), assetID,
	).Error)

	vendorID := uuid.NewString()
	require.NoError(t, db.Exec(
		`INSERT INTO vendors (id, name, phone, status) VALUES (?, 'Acme Supplies', '555-0100', 'active')`,
		vendorID,
	).Error)

	purchaseID := uuid.NewString()
	require.NoError(t, db.Exec(
		`INSERT INTO purchases (id, vendor_id, vendor_name, purchase_price_cents, due_amount_cents, created_by, created_at)
		 VALUES (?, ?, 'Acme Supplies', 250050, 10000, 'admin@example.com', CURRENT_TIMESTAMP)`,
		purchaseID, vendorID,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO purchases (id, purchase_price_cents, due_amount_cents, created_at)
		 VALUES (?, 99950, 0, CURRENT_TIMESTAMP)`,
		uuid.NewString(),
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO purchase_items (id, purchase_id, asset_id, asset_name, qty) VALUES (?, ?, ?, 'Laptop', 5)`,
		uuid.NewString(), purchaseID, assetID,
	).Error)
}

func TestDashboardTotals(t *testing.T) {
	db := setupReportingTestDB(t)
	seedReportingData(t, db)
	svc := newReportingService(t, db)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(30), stats.TotalQuantity)
	assert.Equal(t, int64(1), stats.ApprovedCount)
	assert.Equal(t, int64(1), stats.PendingCount)
	assert.Equal(t, "3500.00", stats.TotalPurchasePrice.StringFixed(2))
	assert.Equal(t, "100.00", stats.TotalDueAmount.StringFixed(2))
}

func TestDashboardEmptyDatabase(t *testing.T) {
	db := setupReportingTestDB(t)
	svc := newReportingService(t, db)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalQuantity)
	assert.Equal(t, "0.00", stats.TotalPurchasePrice.StringFixed(2))
}

func TestRequestRegisterJoinsNames(t *testing.T) {
	db := setupReportingTestDB(t)
	seedReportingData(t, db)
	svc := newReportingService(t, db)

	rows, err := svc.RequestRegister(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var approvedRow *RequestRegisterRow
	for i := range rows {
		if rows[i].Status == "approved" {
			approvedRow = &rows[i]
		}
	}
	require.NotNil(t, approvedRow)
	require.NotNil(t, approvedRow.RequesterName)
	assert.Equal(t, "Jane Doe", *approvedRow.RequesterName)
	require.NotNil(t, approvedRow.ApproverName)
	assert.Equal(t, "Ada Admin", *approvedRow.ApproverName)
}

func TestPurchaseRegister(t *testing.T) {
	db := setupReportingTestDB(t)
	seedReportingData(t, db)
	svc := newReportingService(t, db)

	rows, err := svc.PurchaseRegister(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var withVendor *PurchaseRegisterRow
	for i := range rows {
		if rows[i].VendorName != nil && *rows[i].VendorName == "Acme Supplies" {
			withVendor = &rows[i]
		}
	}
	require.NotNil(t, withVendor)
	assert.Equal(t, 1, withVendor.ItemCount)
	assert.Equal(t, int64(250050), withVendor.PurchasePriceCents)
}

func TestExportPurchaseRegisterProducesWorkbook(t *testing.T) {
	db := setupReportingTestDB(t)
	seedReportingData(t, db)
	svc := newReportingService(t, db)

	data, err := svc.ExportPurchaseRegister(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(purchaseSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, purchaseRegisterHeaders[0], rows[0][0])

	var vendors []string
	for _, row := range rows[1:] {
		vendors = append(vendors, row[1])
	}
	assert.Contains(t, vendors, "Acme Supplies")
}
