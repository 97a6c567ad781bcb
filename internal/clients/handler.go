package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes CRM endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the clients handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type listResponse struct {
	Items      []Client          `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// List returns clients matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListClientsRequest{Search: q.Get("search")}
	if v := q.Get("active"); v != "" {
		active := v == "true" || v == "1"
		req.IsActive = &active
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	req.Limit = perPage
	req.Offset = (page - 1) * perPage

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load clients", nil)
		return
	}
	httpx.OK(w, listResponse{Items: items, Pagination: shared.NewPagination(page, perPage, total)})
}

// Get returns one client.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	client, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "client not found", nil)
			return
		}
		h.logger.Error("get client", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load client", nil)
		return
	}
	httpx.OK(w, client)
}

// Create inserts a new CRM record.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
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
	principal := shared.PrincipalFromContext(r.Context())
	var createdBy int64
	if principal != nil {
		createdBy = principal.ID
	}
	client, err := h.service.Create(r.Context(), req, createdBy)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.Fail(w, http.StatusConflict, "client already exists", nil)
			return
		}
		h.logger.Error("create client", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create client", nil)
		return
	}
	httpx.Created(w, client)
}

// Update modifies a CRM record.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	var req UpdateClientRequest
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
	client, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "client not found", nil)
			return
		}
		h.logger.Error("update client", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update client", nil)
		return
	}
	httpx.OK(w, client)
}

// ToggleActive flips a record's active flag.
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid client id", nil)
		return
	}
	client, err := h.service.ToggleActive(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "client not found", nil)
			return
		}
		h.logger.Error("toggle client", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update client", nil)
		return
	}
	httpx.OK(w, client)
}
