package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/shared"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records every successful mutating request to the audit trail.
// Reads and failed requests are not recorded.
func Middleware(repo Repository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil || rec.status >= 400 {
				return
			}
			entry := Entry{
				ActorID:  principal.ID,
				Action:   r.Method,
				Entity:   chi.RouteContext(r.Context()).RoutePattern(),
				EntityID: chi.URLParam(r, "id"),
			}
			if err := repo.Insert(r.Context(), entry); err != nil {
				logger.Error("record audit entry", slog.Any("error", err))
			}
		})
	}
}
