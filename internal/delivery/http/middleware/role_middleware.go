package middleware

import (
	"net/http"

	"massage-booking/pkg/response"
)

// RequireAdministrator must run after PrincipalMiddleware.Resolve
func RequireAdministrator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipalFromContext(r.Context())

		if principal.IsAnonymous() {
			response.Unauthorized(w, "Authentication required")
			return
		}
		if !principal.IsAdministrator() {
			response.Forbidden(w, "You don't have permission to access this resource")
			return
		}

		next.ServeHTTP(w, r)
	})
}
