package inventory

import (
	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// MountRoutes registers inventory endpoints gated by inventory permissions.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermInventoryRead))
		r.Get("/warehouses", h.ListWarehouses)
		r.Get("/tools", h.ListTools)
		r.Get("/tools/{id}", h.GetTool)
		r.Get("/materials", h.ListMaterials)
		r.Get("/materials/{id}", h.GetMaterial)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermInventoryCreate))
		r.Post("/warehouses", h.CreateWarehouse)
		r.Post("/tools", h.CreateTool)
		r.Post("/materials", h.CreateMaterial)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAll(shared.PermInventoryUpdate))
		r.Patch("/tools/{id}/status", h.ChangeToolStatus)
		r.Patch("/materials/{id}/stock", h.AdjustStock)
	})
}
