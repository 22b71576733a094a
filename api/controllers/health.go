package controllers

import (
	"context"
	"net/http"

	"github.com/trolleyhq/trolley-backend/api/responses"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

// Pinger is the connectivity check readiness depends on.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trolley-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, kv Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trolley-Env", cfg.App.Env)
		if kv != nil {
			if err := kv.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "key-value store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
