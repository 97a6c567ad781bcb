package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Middleware resolves bearer tokens into principals.
type Middleware struct {
	Service *Service
	Tokens  *TokenManager
	Logger  *slog.Logger
}

// RequireAuth rejects requests without a valid access token and stores the
// resolved principal in the request context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			httpx.Fail(w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		userID, err := m.Tokens.ParseAccess(token)
		if err != nil {
			httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		principal, err := m.Service.Principal(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
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
