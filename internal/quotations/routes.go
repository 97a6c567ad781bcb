package quotations

import (
	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// MountRoutes registers quotation endpoints gated by financial permissions.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermFinancialRead))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/pdf", h.ExportPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermFinancialCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermFinancialUpdate))
		r.Put("/{id}", h.Update)
		r.Post("/{id}/send", h.Send)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermFinancialApprove))
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
	})
}
