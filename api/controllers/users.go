package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/assetline-io/assetline-backend/api/middleware"
	"github.com/assetline-io/assetline-backend/api/responses"
	"github.com/assetline-io/assetline-backend/api/validators"
	requestsvc "github.com/assetline-io/assetline-backend/internal/requests"
	usersvc "github.com/assetline-io/assetline-backend/internal/users"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/storage/local"
)

func UserList(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users)
	}
}

type createUserBody struct {
	Email      string  `json:"email" validate:"required,email"`
	Name       string  `json:"name" validate:"required,max=200"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// UserCreate provisions a directory entry plus an identity-provider account.
// Multipart requests may attach an optional profile photo alongside the
// regular fields; JSON requests carry the fields only.
func UserCreate(svc usersvc.Service, store *local.Store, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createUserBody
		var photoPath *string

		if isMultipart(r) {
			body, path, err := decodeUserForm(r, store, maxUploadBytes)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			payload = *body
			photoPath = path
		} else if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var role enums.UserRole
		if payload.Role != nil && *payload.Role != "" {
			parsed, err := enums.ParseUserRole(*payload.Role)
			if err != nil {
				cleanupPhoto(store, photoPath, logg, r)
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			role = parsed
		}

		user, err := svc.Create(r.Context(), usersvc.CreateUserInput{
			Email:      payload.Email,
			Name:       payload.Name,
			Password:   payload.Password,
			Role:       role,
			Department: payload.Department,
			Position:   payload.Position,
			Phone:      payload.Phone,
			PhotoPath:  photoPath,
		})
		if err != nil {
			cleanupPhoto(store, photoPath, logg, r)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func decodeUserForm(r *http.Request, store *local.Store, maxUploadBytes int64) (*createUserBody, *string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse multipart form")
	}

	body := &createUserBody{
		Email:      r.FormValue("email"),
		Name:       r.FormValue("name"),
		Password:   r.FormValue("password"),
		Role:       optionalFormValue(r, "role"),
		Department: optionalFormValue(r, "department"),
		Position:   optionalFormValue(r, "position"),
		Phone:      optionalFormValue(r, "phone"),
	}
	if err := validators.ValidateStruct(body); err != nil {
		return nil, nil, err
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return body, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read photo")
	}
	defer file.Close()

	if store == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeDependency, "upload storage not configured")
	}
	stored, err := store.Save(r.Context(), header.Filename, file)
	if err != nil {
		return nil, nil, err
	}
	return body, &stored, nil
}

func optionalFormValue(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}

func cleanupPhoto(store *local.Store, path *string, logg *logger.Logger, r *http.Request) {
	if store == nil || path == nil {
		return
	}
	if err := store.Remove(*path); err != nil {
		logg.Warn(logg.WithField(r.Context(), "path", *path), "failed to remove orphaned photo")
	}
}

func UserDelete(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// UserProfile returns the authenticated user, their assigned assets, and
// their own asset requests.
func UserProfile(svc usersvc.Service, reqs requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		profile, err := svc.Profile(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requests, err := reqs.List(r.Context(), requestsvc.ListQuery{
			Pagination: pagination.Params{Limit: pagination.MaxLimit},
			Filters:    requestsvc.ListFilters{UserEmail: &email},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"user":     profile.User,
			"assets":   profile.Assets,
			"requests": requests.Requests,
		})
	}
}
