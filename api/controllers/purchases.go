package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetline-io/assetline-backend/api/responses"
	"github.com/assetline-io/assetline-backend/api/validators"
	purchasesvc "github.com/assetline-io/assetline-backend/internal/purchases"
	pkgerrors "github.com/assetline-io/assetline-backend/pkg/errors"
	"github.com/assetline-io/assetline-backend/pkg/logger"
	"github.com/assetline-io/assetline-backend/pkg/pagination"
)

type purchaseItemBody struct {
	AssetID        *string `json:"asset_id,omitempty"`
	Qty            int     `json:"qty"`
	UnitPriceCents int64   `json:"unit_price_cents" validate:"gte=0"`
}

type createPurchaseBody struct {
	VendorID           *string            `json:"vendor_id,omitempty" validate:"omitempty,uuid"`
	Items              []purchaseItemBody `json:"items" validate:"required"`
	PurchasePriceCents int64              `json:"purchase_price_cents" validate:"gte=0"`
	DueAmountCents     int64              `json:"due_amount_cents" validate:"gte=0"`
	Notes              *string            `json:"notes,omitempty"`
}

func toItemInputs(items []purchaseItemBody) ([]purchasesvc.ItemInput, error) {
	out := make([]purchasesvc.ItemInput, 0, len(items))
	for _, item := range items {
		input := purchasesvc.ItemInput{
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
		}
		if item.AssetID != nil && *item.AssetID != "" {
			id, err := uuid.Parse(*item.AssetID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item asset id")
			}
			input.AssetID = &id
		}
		out = append(out, input)
	}
	return out, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field)
	}
	return &id, nil
}

// PurchaseCreate records a restock and credits stock per line item.
func PurchaseCreate(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createPurchaseBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toItemInputs(payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := parseOptionalUUID(payload.VendorID, "vendor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Create(r.Context(), purchasesvc.CreatePurchaseInput{
			VendorID:           vendorID,
			Items:              items,
			PurchasePriceCents: payload.PurchasePriceCents,
			DueAmountCents:     payload.DueAmountCents,
			Notes:              payload.Notes,
			CreatedBy:          actor.email,
			ActorID:            actor.id,
			ActorRole:          actor.role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

// PurchaseUpdate replaces the purchase; stock moves net out in one transaction.
func PurchaseUpdate(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "purchaseId"), "purchaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createPurchaseBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := toItemInputs(payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := parseOptionalUUID(payload.VendorID, "vendor id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Update(r.Context(), purchasesvc.UpdatePurchaseInput{
			PurchaseID:         id,
			VendorID:           vendorID,
			Items:              items,
			PurchasePriceCents: payload.PurchasePriceCents,
			DueAmountCents:     payload.DueAmountCents,
			Notes:              payload.Notes,
			UpdatedBy:          actor.email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func PurchaseDelete(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "purchaseId"), "purchaseId")
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

func PurchaseGet(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "purchaseId"), "purchaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func PurchaseList(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), purchasesvc.ListQuery{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
			VendorID: vendorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"purchases":   result.Purchases,
			"next_cursor": result.NextCursor,
		})
	}
}
