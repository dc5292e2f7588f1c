package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hearthd/hearthd/auth"
	"github.com/hearthd/hearthd/storage"
)

type contextKey int

const claimsKey contextKey = iota

// AuthMiddleware rejects any request without a verifiable bearer token
// and stores the verified claims on the request context. Downstream
// handlers never run without an identity. Verification is pure given the
// fixed signing secret; the middleware mutates no shared state.
func (a *API) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		claims := a.tokens.Verify(token)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates the admin subtree. It runs after AuthMiddleware, so
// claims are always present; a non-admin role is a 403, not a 401.
func (a *API) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if claims.Role != storage.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractBearerToken pulls the token from the standard Authorization
// header. Only the Bearer scheme is recognized.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
