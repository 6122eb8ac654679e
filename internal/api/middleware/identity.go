package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

type contextKey string

const identityContextKey contextKey = "identity"

// IdentityFromContext returns the authenticated identity stored by the
// identity middleware.
func IdentityFromContext(ctx context.Context) (entities.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(entities.Identity)
	return identity, ok
}

// WithIdentity stores an identity on the context. Exposed for tests.
func WithIdentity(ctx context.Context, identity entities.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityMiddleware resolves the bearer session token once per request and
// attaches the resulting identity to the request context. Tenant scoping and
// elevation checks read that identity; request payloads never override it.
func IdentityMiddleware(resolver providers.IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			identity, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				message := "invalid session"
				if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeInternal {
					status = http.StatusInternalServerError
					message = "identity resolution failed"
				}
				writeAuthError(w, status, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireElevated rejects requests whose identity is not elevated staff.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity.Kind != entities.IdentityKindStaff || !identity.Elevated {
			writeAuthError(w, http.StatusForbidden, "elevated staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
