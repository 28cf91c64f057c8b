package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/internal/ledger"
	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/outbox"
	"github.com/assetline-io/assetline-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type assetLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
}

type userLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service drives the asset request workflow: submit, approve, and the
// admin shortcut that does both at once.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*RequestView, error)
	Approve(ctx context.Context, input ApproveInput) (*RequestView, error)
	CreateAndApprove(ctx context.Context, input CreateAndApproveInput) (*RequestView, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*RequestView, error)
}

type service struct {
	repo   *Repository
	assets assetLoader
	users  userLookup
	stock  ledger.Service
	tx     txRunner
	outbox outboxEmitter
}

// NewService wires the request workflow with its collaborators.
func NewService(repo *Repository, assets assetLoader, users userLookup, stock ledger.Service, tx txRunner, outboxSvc outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup required")
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
	return &service{repo: repo, assets: assets, users: users, stock: stock, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*RequestView, error) {
	email := strings.ToLower(strings.TrimSpace(input.UserEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user email required")
	}
	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	asset, err := s.assets.FindByID(ctx, input.AssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}

	request := &models.AssetRequest{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		UserEmail:   email,
		Quantity:    input.Quantity,
		Unit:        asset.Unit,
		Category:    asset.Category,
		Subcategory: asset.Subcategory,
		Status:      enums.RequestStatusPending,
		RequestDate: time.Now(),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset request")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestSubmitted,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, email, input.ActorRole),
			Data: payloads.RequestSubmittedEvent{
				RequestID: request.ID,
				AssetID:   asset.ID,
				AssetName: asset.Name,
				UserEmail: email,
				Quantity:  input.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	view := toView(*request)
	return &view, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*RequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	approvedBy := strings.ToLower(strings.TrimSpace(input.ApprovedBy))
	if approvedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approver email required")
	}

	var approved *models.AssetRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already approved")
		}

		sentDate := time.Now()
		matched, err := repo.MarkApproved(ctx, request.ID, approvedBy, sentDate)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve request")
		}
		if !matched {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already approved")
		}

		if err := s.stock.Adjust(ctx, tx, request.AssetID, -request.Quantity); err != nil {
			return err
		}

		request.Status = enums.RequestStatusApproved
		request.ApprovedBy = &approvedBy
		request.SentDate = &sentDate
		approved = request

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestApproved,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, approvedBy, input.ActorRole),
			Data:          approvedEventPayload(request, approvedBy, sentDate),
		})
	})
	if err != nil {
		return nil, err
	}

	view := toView(*approved)
	return &view, nil
}

func (s *service) CreateAndApprove(ctx context.Context, input CreateAndApproveInput) (*RequestView, error) {
	userEmail := strings.ToLower(strings.TrimSpace(input.UserEmail))
	if userEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user email required")
	}
	adminEmail := strings.ToLower(strings.TrimSpace(input.AdminEmail))
	if adminEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin email required")
	}
	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	asset, err := s.assets.FindByID(ctx, input.AssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}

	// the requester must exist before any stock moves
	if _, err := s.users.FindByEmail(ctx, userEmail); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "requester not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requester")
	}

	if asset.Quantity < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient asset quantity").
			WithDetails(map[string]any{"available": asset.Quantity, "requested": input.Quantity})
	}

	now := time.Now()
	request := &models.AssetRequest{
		ID:          uuid.New(),
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		UserEmail:   userEmail,
		Quantity:    input.Quantity,
		Unit:        asset.Unit,
		Category:    asset.Category,
		Subcategory: asset.Subcategory,
		Status:      enums.RequestStatusApproved,
		ApprovedBy:  &adminEmail,
		UpdatedBy:   &adminEmail,
		SentByAdmin: true,
		RequestDate: now,
		SentDate:    &now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create approved request")
		}
		if err := s.stock.Adjust(ctx, tx, asset.ID, -input.Quantity); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestApproved,
			AggregateType: enums.AggregateAssetRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, adminEmail, input.ActorRole),
			Data:          approvedEventPayload(request, adminEmail, now),
		})
	})
	if err != nil {
		return nil, err
	}

	view := toView(*request)
	return &view, nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	views := make([]RequestView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return &ListResult{Requests: views, NextCursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RequestView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	view := toView(*request)
	return &view, nil
}

func approvedEventPayload(request *models.AssetRequest, approvedBy string, approvedAt time.Time) payloads.RequestApprovedEvent {
	return payloads.RequestApprovedEvent{
		RequestID:   request.ID,
		AssetID:     request.AssetID,
		AssetName:   request.AssetName,
		UserEmail:   request.UserEmail,
		Quantity:    request.Quantity,
		Unit:        derefOrEmpty(request.Unit),
		Category:    derefOrEmpty(request.Category),
		Subcategory: derefOrEmpty(request.Subcategory),
		ApprovedBy:  approvedBy,
		SentByAdmin: request.SentByAdmin,
		ApprovedAt:  approvedAt,
	}
}

func buildActor(userID uuid.UUID, email, role string) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Email: email, Role: role}
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
