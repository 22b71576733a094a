package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/trolleyhq/trolley-backend/api/middleware"
	"github.com/trolleyhq/trolley-backend/api/responses"
	"github.com/trolleyhq/trolley-backend/api/validators"
	"github.com/trolleyhq/trolley-backend/internal/shop"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

const maxHistoryLimit = 500

// CompleteShop archives purchased items into a new shop record and
// clears them from the active list.
func CompleteShop(svc shop.CompletionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.OwnerFromContext(r.Context())
		result, err := svc.Complete(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListShops returns past shops newest-first.
func ListShops(svc shop.HistoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListShops(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// GetShop returns one archived shop record.
func GetShop(svc shop.HistoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shopIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetShop(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DeleteShop removes one archived record as a whole.
func DeleteShop(svc shop.HistoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := shopIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteShop(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func shopIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "shopId"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id must be a valid uuid")
	}
	return id, nil
}
