package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/internal/ledger"
	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/outbox"
	"github.com/assetline-io/assetline-backend/pkg/outbox/payloads"
)

const (
	fallbackAssetName = "Unknown"
	fallbackContact   = "-"
	fallbackActor     = "unknown"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type assetLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Asset, error)
}

type vendorLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

// Service records vendor restocks. Every mutation runs in one transaction
// with its stock movements: a purchase that cannot be applied to stock is
// not recorded at all.
type Service interface {
	Create(ctx context.Context, input CreatePurchaseInput) (*PurchaseView, error)
	Update(ctx context.Context, input UpdatePurchaseInput) (*PurchaseView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*PurchaseView, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

type service struct {
	repo    *Repository
	assets  assetLookup
	vendors vendorLookup
	stock   ledger.Service
	tx      txRunner
	outbox  outboxEmitter
}

// NewService wires the purchase service with its collaborators.
func NewService(repo *Repository, assets assetLookup, vendors vendorLookup, stock ledger.Service, tx txRunner, outboxSvc outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset lookup required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor lookup required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, assets: assets, vendors: vendors, stock: stock, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Create(ctx context.Context, input CreatePurchaseInput) (*PurchaseView, error) {
	if input.PurchasePriceCents < 0 || input.DueAmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amounts cannot be negative")
	}

	items, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase needs at least one usable item")
	}

	createdBy := normalizeActor(input.CreatedBy)

	purchase := &models.Purchase{
		ID:                 uuid.New(),
		VendorID:           input.VendorID,
		PurchasePriceCents: input.PurchasePriceCents,
		DueAmountCents:     input.DueAmountCents,
		Notes:              input.Notes,
		CreatedBy:          createdBy,
		UpdatedBy:          createdBy,
	}

	if input.VendorID != nil {
		vendor, err := s.loadVendor(ctx, *input.VendorID)
		if err != nil {
			return nil, err
		}
		purchase.VendorName = &vendor.Name
		purchase.VendorPhone = snapshotContact(vendor.Phone)
		purchase.VendorAddress = snapshotContact(vendor.Address)
	}

	for i := range items {
		items[i].PurchaseID = purchase.ID
	}
	purchase.Items = items

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
		}
		if err := s.stock.AdjustMany(ctx, tx, applyDeltas(items)); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPurchaseRecorded,
			AggregateType: enums.AggregatePurchase,
			AggregateID:   purchase.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Email: createdBy, Role: input.ActorRole},
			Data: payloads.PurchaseRecordedEvent{
				PurchaseID: purchase.ID,
				VendorName: derefOrEmpty(purchase.VendorName),
				ItemCount:  len(items),
				CreatedBy:  createdBy,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	view := toView(*purchase)
	return &view, nil
}

func (s *service) Update(ctx context.Context, input UpdatePurchaseInput) (*PurchaseView, error) {
	if input.PurchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.PurchasePriceCents < 0 || input.DueAmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amounts cannot be negative")
	}

	items, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase needs at least one usable item")
	}

	updates := map[string]any{
		"purchase_price_cents": input.PurchasePriceCents,
		"due_amount_cents":     input.DueAmountCents,
		"updated_by":           normalizeActor(input.UpdatedBy),
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if input.VendorID != nil {
		vendor, err := s.loadVendor(ctx, *input.VendorID)
		if err != nil {
			return nil, err
		}
		updates["vendor_id"] = *input.VendorID
		updates["vendor_name"] = vendor.Name
		updates["vendor_phone"] = snapshotContact(vendor.Phone)
		updates["vendor_address"] = snapshotContact(vendor.Address)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByID(ctx, input.PurchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}

		// Reverse every old line, then apply every new one. Merging both
		// sets into one batch keeps an unchanged line from transiently
		// tripping the stock floor.
		deltas := reverseDeltas(existing.Items)
		deltas = append(deltas, applyDeltas(items)...)
		if err := s.stock.AdjustMany(ctx, tx, deltas); err != nil {
			return err
		}

		for i := range items {
			items[i].PurchaseID = existing.ID
		}
		if err := repo.ReplaceItems(ctx, existing.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace purchase items")
		}
		if err := repo.UpdateHeader(ctx, existing.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, input.PurchaseID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
		}

		if err := s.stock.AdjustMany(ctx, tx, reverseDeltas(existing.Items)); err != nil {
			return err
		}
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete purchase")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PurchaseView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	view := toView(*purchase)
	return &view, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	views := make([]PurchaseView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return &ListResult{Purchases: views, NextCursor: nextCursor}, nil
}

// resolveItems drops unusable lines and snapshots asset names for the rest.
func (s *service) resolveItems(ctx context.Context, inputs []ItemInput) ([]models.PurchaseItem, error) {
	usable := make([]ItemInput, 0, len(inputs))
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		if item.AssetID == nil || *item.AssetID == uuid.Nil || item.Qty <= 0 {
			continue
		}
		usable = append(usable, item)
		ids = append(ids, *item.AssetID)
	}
	if len(usable) == 0 {
		return nil, nil
	}

	loaded, err := s.assets.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase assets")
	}

	items := make([]models.PurchaseItem, 0, len(usable))
	for _, item := range usable {
		asset, ok := loaded[*item.AssetID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found").
				WithDetails(map[string]string{"asset_id": item.AssetID.String()})
		}
		name := strings.TrimSpace(asset.Name)
		if name == "" {
			name = fallbackAssetName
		}
		items = append(items, models.PurchaseItem{
			ID:             uuid.New(),
			AssetID:        asset.ID,
			AssetName:      name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return items, nil
}

func (s *service) loadVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func applyDeltas(items []models.PurchaseItem) []ledger.Adjustment {
	deltas := make([]ledger.Adjustment, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, ledger.Adjustment{AssetID: item.AssetID, Delta: item.Qty})
	}
	return deltas
}

func reverseDeltas(items []models.PurchaseItem) []ledger.Adjustment {
	deltas := make([]ledger.Adjustment, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, ledger.Adjustment{AssetID: item.AssetID, Delta: -item.Qty})
	}
	return deltas
}

func snapshotContact(value *string) *string {
	if value != nil && strings.TrimSpace(*value) != "" {
		return value
	}
	fallback := fallbackContact
	return &fallback
}

func normalizeActor(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return fallbackActor
	}
	return trimmed
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
