package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trolleyhq/trolley-backend/api/middleware"
	"github.com/trolleyhq/trolley-backend/api/responses"
	"github.com/trolleyhq/trolley-backend/api/validators"
	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/listing"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

type createItemRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Category string `json:"category,omitempty"`
}

type updateItemRequest struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Quantity       *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Category       *string          `json:"category,omitempty"`
	EstimatedPrice *decimal.Decimal `json:"estimatedPrice,omitempty"`
	Purchased      *bool            `json:"purchased,omitempty"`
	Deferred       *bool            `json:"deferred,omitempty"`
}

// ListItems returns the active list in store walking order.
func ListItems(svc listing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchased, err := validators.ParseQueryBool(r, "purchased")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		owner := middleware.OwnerFromContext(r.Context())
		items, err := svc.GetOrderedList(r.Context(), owner, listing.Filter{Purchased: purchased})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CreateItem adds one item to the active list, enriched best-effort.
func CreateItem(svc item.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), item.CreateInput{
			Owner:    middleware.OwnerFromContext(r.Context()),
			Name:     req.Name,
			Quantity: req.Quantity,
			Category: req.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateItem patches one item's fields.
func UpdateItem(svc item.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), middleware.OwnerFromContext(r.Context()), id, item.UpdateInput{
			Name:           req.Name,
			Quantity:       req.Quantity,
			Category:       req.Category,
			EstimatedPrice: req.EstimatedPrice,
			Purchased:      req.Purchased,
			Deferred:       req.Deferred,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// DeleteItem removes one item from the active list.
func DeleteItem(svc item.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), middleware.OwnerFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func itemIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "item id must be a valid uuid")
	}
	return id, nil
}
