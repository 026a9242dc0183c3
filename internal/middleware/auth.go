package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Identity headers set by the upstream auth layer
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

const identityKey contextKey = "identity"

// IdentityMiddleware reads the caller identity from the upstream headers.
// Requests without a user id pass through anonymously.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		who := models.Identity{
			UserID: userID,
			Name:   strings.TrimSpace(r.Header.Get(HeaderUserName)),
			Role:   strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), who)))
	})
}

// WithIdentity stores who in ctx
func WithIdentity(ctx context.Context, who models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFrom returns the caller identity, if any
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	who, ok := ctx.Value(identityKey).(models.Identity)
	return who, ok
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			deny(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		who, ok := IdentityFrom(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !who.IsAdmin() {
			deny(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
