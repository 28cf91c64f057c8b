package reporting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

var centsPerUnit = decimal.NewFromInt(100)

// DashboardStats is the admin landing page summary. Money totals are
// decimal amounts in major units, never floats.
type DashboardStats struct {
	TotalQuantity      int64           `json:"total_quantity"`
	ApprovedCount      int64           `json:"approved_count"`
	PendingCount       int64           `json:"pending_count"`
	TotalPurchasePrice decimal.Decimal `json:"total_purchase_price"`
	TotalDueAmount     decimal.Decimal `json:"total_due_amount"`
}

// Service assembles read-only reports.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	RequestRegister(ctx context.Context) ([]RequestRegisterRow, error)
	PurchaseRegister(ctx context.Context) ([]PurchaseRegisterRow, error)
	ExportPurchaseRegister(ctx context.Context) ([]byte, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reporting repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	row, err := s.repo.DashboardTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dashboard totals")
	}
	return &DashboardStats{
		TotalQuantity:      row.TotalQuantity,
		ApprovedCount:      row.ApprovedCount,
		PendingCount:       row.PendingCount,
		TotalPurchasePrice: centsToAmount(row.PurchaseTotalCents),
		TotalDueAmount:     centsToAmount(row.DueTotalCents),
	}, nil
}

func (s *service) RequestRegister(ctx context.Context) ([]RequestRegisterRow, error) {
	rows, err := s.repo.RequestRegister(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request register")
	}
	return rows, nil
}

func (s *service) PurchaseRegister(ctx context.Context) ([]PurchaseRegisterRow, error) {
	rows, err := s.repo.PurchaseRegister(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase register")
	}
	return rows, nil
}

func (s *service) ExportPurchaseRegister(ctx context.Context) ([]byte, error) {
	rows, err := s.PurchaseRegister(ctx)
	if err != nil {
		return nil, err
	}
	data, err := buildPurchaseRegisterWorkbook(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build purchase register workbook")
	}
	return data, nil
}

func centsToAmount(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}
