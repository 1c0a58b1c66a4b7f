package middleware

import (
	"context"
	"net/http"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/service"
)

// PrincipalMiddleware resolves the caller's role exactly once per request.
// Handlers and usecases receive the result instead of asking again.
type PrincipalMiddleware struct {
	gate service.AuthorizationGate
}

func NewPrincipalMiddleware(gate service.AuthorizationGate) *PrincipalMiddleware {
	return &PrincipalMiddleware{gate: gate}
}

func (m *PrincipalMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := GetIdentityFromContext(r.Context())
		principal := m.gate.Resolve(r.Context(), identity)

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetPrincipalFromContext returns the resolved principal, or Anonymous when none was resolved
func GetPrincipalFromContext(ctx context.Context) entity.Principal {
	principal, ok := ctx.Value(PrincipalKey).(entity.Principal)
	if !ok {
		return entity.AnonymousPrincipal()
	}
	return principal
}
