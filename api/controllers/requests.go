package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/api/middleware"
	"github.com/assetline-io/assetline-backend/api/responses"
	"github.com/assetline-io/assetline-backend/api/validators"
	requestsvc "github.com/assetline-io/assetline-backend/internal/requests"
	"github.com/assetline-io/assetline-backend/pkg/enums"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

type actorRef struct {
	id    uuid.UUID
	email string
	role  string
}

func actorFromContext(r *http.Request) (actorRef, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	if rawID == "" {
		return actorRef{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return actorRef{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return actorRef{
		id:    id,
		email: middleware.UserEmailFromContext(r.Context()),
		role:  middleware.RoleFromContext(r.Context()),
	}, nil
}

// RequestList pages through asset requests. Office users only see their own.
func RequestList(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := requestsvc.ListFilters{}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseRequestStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if actor.role != string(enums.UserRoleAdmin) {
			filters.UserEmail = &actor.email
		} else if email := optionalQuery(r, "user_email"); email != nil {
			filters.UserEmail = email
		}

		result, err := svc.List(r.Context(), requestsvc.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			Filters: filters,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"requests":    result.Requests,
			"next_cursor": result.NextCursor,
		})
	}
}

func RequestGet(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "requestId"), "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

type submitRequestBody struct {
	AssetID  string `json:"asset_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// RequestSubmit lets the authenticated user ask for stock.
func RequestSubmit(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitRequestBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := uuid.Parse(payload.AssetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset id"))
			return
		}

		request, err := svc.Submit(r.Context(), requestsvc.SubmitInput{
			AssetID:   assetID,
			Quantity:  payload.Quantity,
			UserEmail: actor.email,
			ActorID:   actor.id,
			ActorRole: actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// RequestApprove flips a pending request to approved and debits stock.
func RequestApprove(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "requestId"), "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Approve(r.Context(), requestsvc.ApproveInput{
			RequestID:  id,
			ApprovedBy: actor.email,
			ActorID:    actor.id,
			ActorRole:  actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

type createAndApproveBody struct {
	AssetID   string `json:"asset_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UserEmail string `json:"user_email" validate:"required,email"`
}

// RequestCreateAndApprove hands an asset to a user directly, admin only.
func RequestCreateAndApprove(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAndApproveBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assetID, err := uuid.Parse(payload.AssetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid asset id"))
			return
		}

		request, err := svc.CreateAndApprove(r.Context(), requestsvc.CreateAndApproveInput{
			AssetID:    assetID,
			Quantity:   payload.Quantity,
			UserEmail:  payload.UserEmail,
			AdminEmail: actor.email,
			ActorID:    actor.id,
			ActorRole:  actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}
