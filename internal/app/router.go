package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/helios-energy/helios-admin/internal/audit"
	"github.com/helios-energy/helios-admin/internal/auth"
	"github.com/helios-energy/helios-admin/internal/clients"
	"github.com/helios-energy/helios-admin/internal/inventory"
	"github.com/helios-energy/helios-admin/internal/observability"
	"github.com/helios-energy/helios-admin/internal/quotations"
	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/tickets"
	"github.com/helios-energy/helios-admin/internal/users"
	"github.com/helios-energy/helios-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    auth.Middleware
	RolesHandler      *rbac.Handler
	UsersHandler      *users.Handler
	ClientsHandler    *clients.Handler
	InventoryHandler  *inventory.Handler
	QuotationsHandler *quotations.Handler
	TicketsHandler    *tickets.Handler
	AuditHandler      *audit.Handler
	AuditRepo         audit.Repository
	JobHandler        *jobs.Handler
	RBACMiddleware    rbac.Middleware
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router for the admin API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a valid access token. The audit middleware
	// records mutations after the principal is resolved.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		if params.AuditRepo != nil {
			r.Use(audit.Middleware(params.AuditRepo, params.Logger))
		}

		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.ClientsHandler != nil {
			r.Route("/clients", func(r chi.Router) {
				params.ClientsHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.InventoryHandler != nil {
			r.Route("/inventory", func(r chi.Router) {
				params.InventoryHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.QuotationsHandler != nil {
			r.Route("/quotations", func(r chi.Router) {
				params.QuotationsHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.TicketsHandler != nil {
			r.Route("/tickets", func(r chi.Router) {
				params.TicketsHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.AuditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				params.AuditHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
