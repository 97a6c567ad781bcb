package tickets

import (
	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// MountRoutes registers ticket endpoints gated by support permissions.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermSupportRead))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/comments", h.ListComments)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermSupportCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermSupportUpdate))
		r.Patch("/{id}/status", h.ChangeStatus)
		r.Patch("/{id}/assign", h.Assign)
		r.Post("/{id}/comments", h.AddComment)
	})
}
