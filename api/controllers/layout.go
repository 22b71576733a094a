package controllers

import (
	"net/http"

	"github.com/trolleyhq/trolley-backend/api/responses"
	"github.com/trolleyhq/trolley-backend/api/validators"
	"github.com/trolleyhq/trolley-backend/internal/layout"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

type saveLayoutRequest struct {
	Positions map[string]int `json:"positions" validate:"required,min=1"`
}

// GetLayout returns the active store layout.
func GetLayout(svc layout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active, err := svc.Active(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, active)
	}
}

// SaveLayout replaces the active store layout.
func SaveLayout(svc layout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveLayoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Save(r.Context(), layout.Layout(req.Positions)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}
