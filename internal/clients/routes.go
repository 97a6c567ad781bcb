package clients

import (
	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// MountRoutes registers client endpoints gated by CRM permissions.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermClientsRead))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermClientsCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermClientsUpdate))
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/active", h.ToggleActive)
	})
}
