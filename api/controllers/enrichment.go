package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/trolleyhq/trolley-backend/api/middleware"
	"github.com/trolleyhq/trolley-backend/api/responses"
	"github.com/trolleyhq/trolley-backend/internal/enrich"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

// Recategorize runs the bulk category pass over the active list. The
// pass is long-lived, so it is detached from the request's deadline and
// bounded by its own timeout instead.
func Recategorize(svc enrich.Service, logg *logger.Logger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := bulkContext(r.Context(), timeout)
		defer cancel()

		result, err := svc.BulkRecategorize(ctx, middleware.OwnerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Reprice runs the bulk price pass over the active list.
func Reprice(svc enrich.Service, logg *logger.Logger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := bulkContext(r.Context(), timeout)
		defer cancel()

		result, err := svc.BulkReprice(ctx, middleware.OwnerFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// bulkContext keeps request cancellation (so an abandoned call stops
// burning model quota) but swaps the interactive deadline for the
// bulk one.
func bulkContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return context.WithTimeout(parent, timeout)
}
