package middleware

import (
	"net/http"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// RequireRole gates a route on the role policy: the caller's role must
// satisfy domain.Role.Allows for the required role.
func RequireRole(required domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !role.Allows(required) {
				logger.Warn("Role not authorized for endpoint",
					zap.String("role", role.String()),
					zap.String("required", required.String()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route to ADMIN callers.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin, logger)
}
