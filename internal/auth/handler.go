package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes authentication endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	mw      Middleware
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw}
}

// MountRoutes registers auth endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAuth)
		r.Get("/me", h.Me)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	User   *shared.Principal `json:"user"`
	Tokens TokenPair         `json:"tokens"`
}

// Login validates credentials and returns the principal with a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
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

	principal, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	httpx.OK(w, loginResponse{User: principal, Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			httpx.Fail(w, http.StatusUnauthorized, "refresh token expired", nil)
			return
		}
		h.logger.Error("refresh", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	httpx.OK(w, pair)
}

// Logout revokes the refresh token. Always succeeds for unknown tokens.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body", nil)
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	httpx.OK(w, nil)
}

// Me returns the principal resolved from the bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Fail(w, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	httpx.OK(w, principal)
}
