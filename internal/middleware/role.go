package middleware

import (
	"net/http"
	"slices"

	"github.com/canteenrush/canteenrush/internal/auth"
	"github.com/canteenrush/canteenrush/internal/model"
)

// RequireRole returns middleware that only admits sessions with one of the
// given roles. Must be applied after Session.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.SessionFromContext(r.Context())
			if sess == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !slices.Contains(roles, sess.Role) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed for this account")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireStudent admits student sessions.
func RequireStudent() func(http.Handler) http.Handler {
	return RequireRole(model.RoleStudent)
}

// RequireVendor admits vendor sessions.
func RequireVendor() func(http.Handler) http.Handler {
	return RequireRole(model.RoleVendor)
}

// RequireAdmin admits admin sessions.
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}
