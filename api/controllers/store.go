package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/api/responses"
	"github.com/engagehq/engage-backend/api/validators"
	"github.com/engagehq/engage-backend/internal/store"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
	"github.com/engagehq/engage-backend/pkg/logger"
)

// StoreItems lists the purchasable catalog.
func StoreItems(svc store.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		items, err := svc.ListItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

type purchaseRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
}

// StorePurchase settles a points purchase for the caller.
func StorePurchase(svc store.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		identity, err := callerIdentity(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req purchaseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		result, err := svc.Purchase(r.Context(), store.PurchaseInput{
			Identity: identity,
			ItemID:   itemID,
			Quantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
