package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

const ownerHeader = "X-Trolley-Owner"

type contextKey string

const ctxOwner contextKey = "owner"

// OwnerFromContext returns the list owner set by the gateway header.
// An empty owner means the household-wide view.
func OwnerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOwner).(string); ok {
		return v
	}
	return ""
}

// WithOwner injects the owner identity into the context.
func WithOwner(ctx context.Context, owner string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOwner, owner)
}

// Owner reads the owner identity from the gateway header and attaches
// it to the request context and log fields. The header is optional;
// absence selects the household-wide view.
func Owner(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := strings.TrimSpace(r.Header.Get(ownerHeader))
			ctx := WithOwner(r.Context(), owner)
			if logg != nil && owner != "" {
				ctx = logg.WithOwner(ctx, owner)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
