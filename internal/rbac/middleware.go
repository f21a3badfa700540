package rbac

import (
	"log/slog"
	"net/http"

	"github.com/meridian-crm/meridian/internal/platform/httpx"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Middleware wires role checks for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireRole ensures the current identity carries one of the given roles.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := make(map[shared.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if len(allowed) > 0 && !allowed[id.Role] {
				if m.Logger != nil {
					m.Logger.Warn("role denied", slog.String("role", string(id.Role)), slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff ensures the current identity belongs to tenant staff.
func (m Middleware) RequireStaff() func(http.Handler) http.Handler {
	return m.RequireRole(shared.RoleSuperAdmin, shared.RoleAdmin, shared.RoleStaff)
}
