package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes warehouse, tool and material endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func warehouseFilter(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get("warehouse_id"), 10, 64)
	return id
}

// ListWarehouses returns all warehouses.
func (h *Handler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListWarehouses(r.Context())
	if err != nil {
		h.logger.Error("list warehouses", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load warehouses", nil)
		return
	}
	httpx.OK(w, items)
}

// CreateWarehouse registers a warehouse.
func (h *Handler) CreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req CreateWarehouseRequest
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
	created, err := h.service.CreateWarehouse(r.Context(), req)
	if err != nil {
		h.logger.Error("create warehouse", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create warehouse", nil)
		return
	}
	httpx.Created(w, created)
}

// ListTools returns tools, optionally filtered by warehouse_id.
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListTools(r.Context(), warehouseFilter(r))
	if err != nil {
		h.logger.Error("list tools", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load tools", nil)
		return
	}
	httpx.OK(w, items)
}

// GetTool returns one tool.
func (h *Handler) GetTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid tool id", nil)
		return
	}
	tool, err := h.service.GetTool(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "tool not found", nil)
			return
		}
		h.logger.Error("get tool", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load tool", nil)
		return
	}
	httpx.OK(w, tool)
}

// CreateTool registers a tool.
func (h *Handler) CreateTool(w http.ResponseWriter, r *http.Request) {
	var req CreateToolRequest
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
	created, err := h.service.CreateTool(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusBadRequest, "warehouse not found", nil)
			return
		}
		h.logger.Error("create tool", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create tool", nil)
		return
	}
	httpx.Created(w, created)
}

// ChangeToolStatus moves a tool through its lifecycle.
func (h *Handler) ChangeToolStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid tool id", nil)
		return
	}
	var req ToolStatusRequest
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
	tool, err := h.service.ChangeToolStatus(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "tool not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			httpx.Fail(w, http.StatusConflict, err.Error(), nil)
		default:
			h.logger.Error("change tool status", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to update tool", nil)
		}
		return
	}
	httpx.OK(w, tool)
}

// ListMaterials returns materials, optionally filtered by warehouse_id.
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMaterials(r.Context(), warehouseFilter(r))
	if err != nil {
		h.logger.Error("list materials", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load materials", nil)
		return
	}
	httpx.OK(w, items)
}

// GetMaterial returns one material.
func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id", nil)
		return
	}
	m, err := h.service.GetMaterial(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "material not found", nil)
			return
		}
		h.logger.Error("get material", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load material", nil)
		return
	}
	httpx.OK(w, m)
}

// CreateMaterial registers a material.
func (h *Handler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req CreateMaterialRequest
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
	created, err := h.service.CreateMaterial(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusBadRequest, "warehouse not found", nil)
			return
		}
		h.logger.Error("create material", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create material", nil)
		return
	}
	httpx.Created(w, created)
}

// AdjustStock applies a signed quantity delta to a material.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid material id", nil)
		return
	}
	var req AdjustStockRequest
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
	m, err := h.service.AdjustStock(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "material not found", nil)
		case errors.Is(err, ErrNegativeStock):
			httpx.Fail(w, http.StatusConflict, err.Error(), nil)
		default:
			h.logger.Error("adjust stock", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to adjust stock", nil)
		}
		return
	}
	httpx.OK(w, m)
}
