package quotations

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes quotation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     *PDFBuilder
}

// NewHandler constructs the quotations handler. The PDF builder may be nil
// when no Gotenberg instance is configured; export then returns 503.
func NewHandler(logger *slog.Logger, service *Service, pdf *PDFBuilder) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func principalID(r *http.Request) int64 {
	if p := shared.PrincipalFromContext(r.Context()); p != nil {
		return p.ID
	}
	return 0
}

type listResponse struct {
	Items      []QuotationWithClient `json:"items"`
	Pagination shared.Pagination     `json:"pagination"`
}

// List returns quotations matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListQuotationsRequest{}
	if v := q.Get("client_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ClientID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		status := QuotationStatus(v)
		req.Status = &status
	}
	if v := q.Get("date_from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			req.DateFrom = &ts
		}
	}
	if v := q.Get("date_to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			req.DateTo = &ts
		}
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
		h.logger.Error("list quotations", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load quotations", nil)
		return
	}
	httpx.OK(w, listResponse{Items: items, Pagination: shared.NewPagination(page, perPage, total)})
}

// Get returns one quotation with its lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	quotation, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "quotation not found", nil)
			return
		}
		h.logger.Error("get quotation", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load quotation", nil)
		return
	}
	httpx.OK(w, quotation)
}

// Create builds a new draft quotation.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
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
	quotation, err := h.service.Create(r.Context(), req, principalID(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			httpx.Fail(w, http.StatusUnprocessableEntity, err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			httpx.Fail(w, http.StatusBadRequest, "client not found", nil)
		default:
			h.logger.Error("create quotation", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to create quotation", nil)
		}
		return
	}
	httpx.Created(w, quotation)
}

// Update modifies a draft quotation.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	var req UpdateQuotationRequest
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
	quotation, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondStatusErr(w, "update quotation", err)
		return
	}
	httpx.OK(w, quotation)
}

// Send marks the quotation as delivered to the client.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	quotation, err := h.service.Send(r.Context(), id, principalID(r))
	if err != nil {
		h.respondStatusErr(w, "send quotation", err)
		return
	}
	httpx.OK(w, quotation)
}

// Approve accepts a sent quotation.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	quotation, err := h.service.Approve(r.Context(), id, principalID(r))
	if err != nil {
		h.respondStatusErr(w, "approve quotation", err)
		return
	}
	httpx.OK(w, quotation)
}

// Reject declines a sent quotation with a reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	var req RejectQuotationRequest
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
	quotation, err := h.service.Reject(r.Context(), id, principalID(r), req.Reason)
	if err != nil {
		h.respondStatusErr(w, "reject quotation", err)
		return
	}
	httpx.OK(w, quotation)
}

// ExportPDF renders the quotation document as a PDF download.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid quotation id", nil)
		return
	}
	if h.pdf == nil {
		httpx.Fail(w, http.StatusServiceUnavailable, "document rendering is not configured", nil)
		return
	}
	quotation, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "quotation not found", nil)
			return
		}
		h.logger.Error("get quotation", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load quotation", nil)
		return
	}
	pdf, err := h.pdf.Render(r.Context(), quotation)
	if err != nil {
		h.logger.Error("render quotation pdf", slog.Any("error", err))
		httpx.Fail(w, http.StatusBadGateway, "failed to render document", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", quotation.DocNumber))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) respondStatusErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "quotation not found", nil)
	case errors.Is(err, ErrInvalidStatus):
		httpx.Fail(w, http.StatusConflict, err.Error(), nil)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update quotation", nil)
	}
}
