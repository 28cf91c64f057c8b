package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/assetline-io/assetline-backend/api/responses"
	"github.com/assetline-io/assetline-backend/api/validators"
	assetsvc "github.com/assetline-io/assetline-backend/internal/assets"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
	"github.com/assetline-io/assetline-backend/pkg/storage/local"
)

const maxNameLen = 200

// AssetList returns one page of assets with optional filters.
func AssetList(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := assetsvc.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			Filters: assetsvc.ListFilters{
				Query:           validators.SanitizeString(r.URL.Query().Get("q"), maxNameLen),
				Category:        optionalQuery(r, "category"),
				Brand:           optionalQuery(r, "brand"),
				AssignedToEmail: optionalQuery(r, "assigned_to"),
			},
		}

		result, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"assets":      result.Assets,
			"next_cursor": result.NextCursor,
		})
	}
}

func AssetGet(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

type createAssetRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Quantity        int      `json:"quantity" validate:"gte=0"`
	Unit            *string  `json:"unit,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Subcategory     *string  `json:"subcategory,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	AssignedToEmail *string  `json:"assigned_to_email,omitempty" validate:"omitempty,email"`
}

func AssetCreate(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createAssetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Create(r.Context(), assetsvc.CreateAssetInput{
			Name:            payload.Name,
			Quantity:        payload.Quantity,
			Unit:            payload.Unit,
			Category:        payload.Category,
			Subcategory:     payload.Subcategory,
			Brand:           payload.Brand,
			Tags:            payload.Tags,
			AssignedToEmail: payload.AssignedToEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

type updateAssetRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Quantity        *int     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit            *string  `json:"unit,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Subcategory     *string  `json:"subcategory,omitempty"`
	Brand           *string  `json:"brand,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	AssignedToEmail *string  `json:"assigned_to_email,omitempty"`
}

func AssetUpdate(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateAssetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Update(r.Context(), id, assetsvc.UpdateAssetInput{
			Name:            payload.Name,
			Quantity:        payload.Quantity,
			Unit:            payload.Unit,
			Category:        payload.Category,
			Subcategory:     payload.Subcategory,
			Brand:           payload.Brand,
			Tags:            payload.Tags,
			AssignedToEmail: payload.AssignedToEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func AssetDelete(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
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

// AssetUploadPhoto stores the file locally and patches the asset's photo path.
// The previous photo, if any, is removed after the patch commits.
func AssetUploadPhoto(svc assetsvc.Service, store *local.Store, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "assetId"), "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo file required"))
			return
		}
		defer file.Close()

		storedPath, err := store.Save(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Update(r.Context(), id, assetsvc.UpdateAssetInput{PhotoPath: &storedPath})
		if err != nil {
			_ = store.Remove(storedPath)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if current.PhotoPath != nil && *current.PhotoPath != storedPath {
			if rmErr := store.Remove(*current.PhotoPath); rmErr != nil && logg != nil {
				logg.Warn(logg.WithField(r.Context(), "photo_path", *current.PhotoPath), "failed to remove previous photo")
			}
		}

		responses.WriteSuccess(w, asset)
	}
}

func optionalQuery(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return nil
	}
	return &value
}
