package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

// Repository persists asset requests.
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

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	var request models.AssetRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *Repository) Create(ctx context.Context, request *models.AssetRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// MarkApproved flips a pending request to approved in one guarded UPDATE.
// Zero rows means the request is missing or no longer pending.
func (r *Repository) MarkApproved(ctx context.Context, id uuid.UUID, approvedBy string, sentDate time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(map[string]any{
			"status":      enums.RequestStatusApproved,
			"approved_by": approvedBy,
			"updated_by":  approvedBy,
			"sent_date":   sentDate,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns one cursor page of requests matching the filters.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.AssetRequest, string, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.AssetRequest{})
	if query.Filters.Status != nil {
		qb = qb.Where("status = ?", *query.Filters.Status)
	}
	if query.Filters.UserEmail != nil {
		qb = qb.Where("user_email = ?", *query.Filters.UserEmail)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.AssetRequest
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return rows, nextCursor, nil
}

// CountByStatus returns the number of requests in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.RequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AssetRequest{}).
		Where("status = ?", status).
		Count(&count).
		Error
	return count, err
}
