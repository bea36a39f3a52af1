package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sapphiretrails/backoffice/internal/http/response"
	"github.com/sapphiretrails/backoffice/pkg/auth"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireRole admits requests carrying a valid bearer token whose role is
// one of roles. The claims and the user id are put on the context.
func RequireRole(secret string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "missing or invalid authorization header")
				return
			}
			claims, err := auth.Parse(strings.TrimPrefix(authz, "Bearer "), secret)
			if err != nil {
				if auth.IsExpired(err) {
					response.WriteError(w, http.StatusUnauthorized, "session expired", response.CodeExpiredToken)
					return
				}
				response.WriteError(w, http.StatusUnauthorized, "invalid authorization token", response.CodeInvalidToken)
				return
			}
			if !hasRole(claims.Role, roles) {
				logger.WarnContext(r.Context(), "Role rejected", "user_id", claims.Sub, "role", claims.Role, "path", r.URL.Path)
				response.Forbidden(w, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func Claims(r *http.Request) *auth.Claims {
	v, _ := r.Context().Value(CtxClaims).(*auth.Claims)
	return v
}
