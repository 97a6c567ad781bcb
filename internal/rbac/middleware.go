package rbac

import (
	"net/http"
	"strings"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Middleware wires permission checks for HTTP handlers. It reads the
// principal resolved by the auth middleware; requests without a principal
// are rejected, never waved through.
type Middleware struct{}

// RequireAny ensures the current principal has at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}
			if principal.HasAnyPermission(normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.Fail(w, http.StatusForbidden, "permission denied", nil)
		})
	}
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}
			if principal.HasAllPermissions(normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.Fail(w, http.StatusForbidden, "permission denied", nil)
		})
	}
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}
