package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetline-io/assetline-backend/pkg/db"
	"github.com/assetline-io/assetline-backend/pkg/db/models"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/identity"
	"github.com/assetline-io/assetline-backend/pkg/logger"
)

type identityProvider interface {
	CreateAccount(ctx context.Context, req identity.CreateAccountRequest) (*identity.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

type assignedAssetLister interface {
	ListByAssignee(ctx context.Context, email string) ([]models.Asset, error)
}

// CreateUserInput carries the fields accepted when provisioning a user.
// The password goes straight to the identity provider and is never stored.
type CreateUserInput struct {
	Email      string
	Name       string
	Password   string
	Role       enums.UserRole
	Department *string
	Position   *string
	Phone      *string
	PhotoPath  *string
}

// UserView is the read model returned to callers.
type UserView struct {
	ID         uuid.UUID      `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Role       enums.UserRole `json:"role"`
	Department *string        `json:"department,omitempty"`
	Position   *string        `json:"position,omitempty"`
	Phone      *string        `json:"phone,omitempty"`
	PhotoPath  *string        `json:"photo_path,omitempty"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ProfileView is a user plus the assets currently assigned to them.
type ProfileView struct {
	User   UserView        `json:"user"`
	Assets []AssignedAsset `json:"assets"`
}

// AssignedAsset is the slim asset read model embedded in profiles.
type AssignedAsset struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Unit     *string   `json:"unit,omitempty"`
	Category *string   `json:"category,omitempty"`
}

// Service manages the user directory.
type Service interface {
	List(ctx context.Context) ([]UserView, error)
	Create(ctx context.Context, input CreateUserInput) (*UserView, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByEmail(ctx context.Context, email string) (*UserView, error)
	Profile(ctx context.Context, email string) (*ProfileView, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo     *Repository
	assets   assignedAssetLister
	provider identityProvider
	logg     *logger.Logger
}

// NewService wires the user directory service.
func NewService(repo *Repository, assets assignedAssetLister, provider identityProvider, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if assets == nil {
		return nil, fmt.Errorf("asset lister required")
	}
	if provider == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	return &service{repo: repo, assets: assets, provider: provider, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]UserView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	views := make([]UserView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserView, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleOfficeUser
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already exists with this email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	account, err := s.provider.CreateAccount(ctx, identity.CreateAccountRequest{
		Email:    email,
		Password: input.Password,
		Name:     name,
	})
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:         uuid.New(),
		Email:      email,
		Name:       name,
		Role:       role,
		ExternalID: &account.ID,
		Department: input.Department,
		Position:   input.Position,
		Phone:      input.Phone,
		PhotoPath:  input.PhotoPath,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// the provider account is orphaned otherwise
		if cleanupErr := s.provider.DeleteAccount(ctx, account.ID); cleanupErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "external_id", account.ID), "failed to clean up identity account")
		}
		// the email pre-check races with concurrent creates
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already exists with this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	view := toView(*user)
	return &view, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if user.ExternalID != nil {
		if err := s.provider.DeleteAccount(ctx, *user.ExternalID); err != nil {
			return err
		}
	}

	matched, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	view := toView(*user)
	return &view, nil
}

func (s *service) Profile(ctx context.Context, email string) (*ProfileView, error) {
	view, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	rows, err := s.assets.ListByAssignee(ctx, view.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned assets")
	}

	assigned := make([]AssignedAsset, 0, len(rows))
	for _, row := range rows {
		assigned = append(assigned, AssignedAsset{
			ID:       row.ID,
			Name:     row.Name,
			Quantity: row.Quantity,
			Unit:     row.Unit,
			Category: row.Category,
		})
	}

	return &ProfileView{User: *view, Assets: assigned}, nil
}

func (s *service) IsAdmin(ctx context.Context, email string) (bool, error) {
	view, err := s.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return view.Role == enums.UserRoleAdmin, nil
}

func toView(user models.User) UserView {
	return UserView{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Position:   user.Position,
		Phone:      user.Phone,
		PhotoPath:  user.PhotoPath,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
