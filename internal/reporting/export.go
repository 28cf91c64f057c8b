package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const purchaseSheetName = "Purchases"

var purchaseRegisterHeaders = []string{
	"Purchase ID", "Vendor", "Vendor Phone", "Items", "Purchase Price", "Due Amount", "Recorded By", "Recorded At",
}

func buildPurchaseRegisterWorkbook(rows []PurchaseRegisterRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(purchaseSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range purchaseRegisterHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(purchaseSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []any{
			row.PurchaseID.String(),
			derefOr(row.VendorName, "-"),
			derefOr(row.VendorPhone, "-"),
			row.ItemCount,
			centsToAmount(row.PurchasePriceCents).StringFixed(2),
			centsToAmount(row.DueAmountCents).StringFixed(2),
			row.CreatedBy,
			row.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(purchaseSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}
