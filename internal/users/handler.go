package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      rbac.Middleware
}

// NewHandler constructs the users handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers user endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAny(shared.PermUsersRead))
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(shared.PermUsersCreate))
		r.Post("/", h.Create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAll(shared.PermUsersUpdate))
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/active", h.ToggleActive)
	})
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

type updateUserRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,max=120"`
	RoleID int64  `json:"role_id" validate:"required,gt=0"`
}

// List returns all users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load users", nil)
		return
	}
	httpx.OK(w, users)
}

// Get returns one user.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "user not found", nil)
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load user", nil)
		return
	}
	httpx.OK(w, user)
}

// Create inserts a new account.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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
	user, err := h.service.CreateUser(r.Context(), req.Email, req.Name, req.Password, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			httpx.Fail(w, http.StatusConflict, "email already in use", map[string][]string{"email": {"already in use"}})
		case errors.Is(err, ErrWeakPassword):
			httpx.Fail(w, http.StatusBadRequest, "validation failed", map[string][]string{"password": {"is too short"}})
		default:
			h.logger.Error("create user", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to create user", nil)
		}
		return
	}
	httpx.Created(w, user)
}

// Update modifies account attributes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req updateUserRequest
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
	user, err := h.service.UpdateUser(r.Context(), id, req.Email, req.Name, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, ErrEmailTaken):
			httpx.Fail(w, http.StatusConflict, "email already in use", map[string][]string{"email": {"already in use"}})
		default:
			h.logger.Error("update user", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to update user", nil)
		}
		return
	}
	httpx.OK(w, user)
}

// ToggleActive flips the account's active flag.
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	user, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "user not found", nil)
			return
		}
		h.logger.Error("toggle user", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update user", nil)
		return
	}
	httpx.OK(w, user)
}
