package ledger

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
)

// Adjustment is a signed quantity change for one asset. Positive deltas
// restock, negative deltas debit.
type Adjustment struct {
	AssetID uuid.UUID
	Delta   int
}

// Service applies stock movements atomically. Callers supply the enclosing
// transaction so the movement commits or rolls back with its business write.
type Service interface {
	Adjust(ctx context.Context, tx *gorm.DB, assetID uuid.UUID, delta int) error
	AdjustMany(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error
}

type service struct{}

// NewService returns the default stock movement implementation.
func NewService() Service {
	return service{}
}

// Adjust moves an asset's quantity by delta using a single guarded UPDATE.
// The guard keeps quantity from going below zero without a SELECT FOR UPDATE.
func (service) Adjust(ctx context.Context, tx *gorm.DB, assetID uuid.UUID, delta int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}
	if assetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if delta == 0 {
		return nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE assets
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity + ? >= 0
	`, delta, assetID, delta)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust asset quantity")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// The guard rejected the row or the asset is gone; tell them apart.
	var count int64
	if err := tx.WithContext(ctx).Raw(`SELECT COUNT(1) FROM assets WHERE id = ?`, assetID).Scan(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset existence")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient asset quantity").
		WithDetails(map[string]any{"asset_id": assetID.String(), "delta": delta})
}

// AdjustMany applies a batch of movements in a stable order. Deltas for the
// same asset are merged first so a reversal and re-apply in one batch cannot
// trip the floor guard transiently.
func (s service) AdjustMany(ctx context.Context, tx *gorm.DB, adjustments []Adjustment) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}

	merged := make(map[uuid.UUID]int, len(adjustments))
	for _, adj := range adjustments {
		if adj.AssetID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
		}
		merged[adj.AssetID] += adj.Delta
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if err := s.Adjust(ctx, tx, id, merged[id]); err != nil {
			return err
		}
	}
	return nil
}
