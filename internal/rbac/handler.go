package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes role and permission management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      Middleware
}

// NewHandler constructs the rbac handler.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers role endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(shared.PermRolesRead))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/permissions/catalog", h.Permissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(shared.PermRolesCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(shared.PermRolesUpdate))
		r.Put("/{id}", h.Update)
		r.Put("/{id}/permissions", h.SetPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(shared.PermRolesDelete))
		r.Delete("/{id}", h.Delete)
	})
}

type roleRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type setPermissionsRequest struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"required"`
}

// List returns all roles with permissions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load roles", nil)
		return
	}
	httpx.OK(w, roles)
}

// Get returns one role.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id", nil)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "role not found", nil)
			return
		}
		h.logger.Error("get role", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load role", nil)
		return
	}
	httpx.OK(w, role)
}

// Create inserts a new role.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if fields, err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	} else if fields != nil {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", fields)
		return
	}
	role, err := h.service.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrRoleExists) {
			httpx.Fail(w, http.StatusConflict, "role already exists", nil)
			return
		}
		h.logger.Error("create role", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create role", nil)
		return
	}
	httpx.Created(w, role)
}

// Update modifies an existing role.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id", nil)
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if fields, err := shared.ValidateStruct(req); err != nil {
		httpx.RespondError(w, err)
		return
	} else if fields != nil {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", fields)
		return
	}
	role, err := h.service.UpdateRole(r.Context(), id, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "role not found", nil)
		case errors.Is(err, ErrRoleExists):
			httpx.Fail(w, http.StatusConflict, "role already exists", nil)
		default:
			h.logger.Error("update role", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to update role", nil)
		}
		return
	}
	httpx.OK(w, role)
}

// SetPermissions replaces a role's permission set.
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id", nil)
		return
	}
	var req setPermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), id, req.PermissionIDs); err != nil {
		h.logger.Error("set role permissions", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update permissions", nil)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "failed to load role", nil)
		return
	}
	httpx.OK(w, role)
}

// Delete removes a role.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid role id", nil)
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "role not found", nil)
		case errors.Is(err, ErrSystemRole):
			httpx.Fail(w, http.StatusConflict, "system role cannot be removed", nil)
		default:
			h.logger.Error("delete role", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to delete role", nil)
		}
		return
	}
	httpx.OK(w, nil)
}

// Permissions lists the permission catalog.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load permissions", nil)
		return
	}
	httpx.OK(w, perms)
}
