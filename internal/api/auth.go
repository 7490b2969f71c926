package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/nerrad567/lightguard-core/internal/auth"
)

// ctxKeyClaims is the context key for validated token claims.
const ctxKeyClaims contextKey = "claims"

// authMiddleware validates the bearer token on protected routes and stores
// the claims in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeUnauthorized(w, "bearer token required")
			return
		}

		claims, err := auth.ParseToken(token, s.secCfg.JWT.Secret, s.secCfg.JWT.Issuer)
		if err != nil {
			s.logger.Debug("token rejected", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePermission returns middleware that rejects callers whose role lacks perm.
// It must run after authMiddleware.
func (s *Server) requirePermission(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !auth.HasPermission(claims.Role, perm) {
				writeForbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// claimsFromContext returns the caller's claims, or nil on unauthenticated routes.
func claimsFromContext(ctx context.Context) *auth.CustomClaims {
	claims, _ := ctx.Value(ctxKeyClaims).(*auth.CustomClaims) //nolint:errcheck // nil when absent
	return claims
}
