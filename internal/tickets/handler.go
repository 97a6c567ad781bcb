package tickets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes support ticket endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
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
	Items      []TicketWithNames `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// List returns tickets matching the query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListTicketsRequest{}
	if v := q.Get("client_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.ClientID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		status := TicketStatus(v)
		req.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority := TicketPriority(v)
		req.Priority = &priority
	}
	if v := q.Get("assigned_to"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.AssignedTo = &id
		}
	}
	if v := q.Get("breached"); v != "" {
		breached := v == "true" || v == "1"
		req.Breached = &breached
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
		h.logger.Error("list tickets", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load tickets", nil)
		return
	}
	httpx.OK(w, listResponse{Items: items, Pagination: shared.NewPagination(page, perPage, total)})
}

// Get returns one ticket.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid ticket id", nil)
		return
	}
	ticket, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "ticket not found", nil)
			return
		}
		h.logger.Error("get ticket", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load ticket", nil)
		return
	}
	httpx.OK(w, ticket)
}

// Create opens a new ticket.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
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
	ticket, err := h.service.Create(r.Context(), req, principalID(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Fail(w, http.StatusBadRequest, "client not found", nil)
			return
		}
		h.logger.Error("create ticket", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create ticket", nil)
		return
	}
	httpx.Created(w, ticket)
}

// ChangeStatus moves a ticket through its lifecycle.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid ticket id", nil)
		return
	}
	var req TicketStatusRequest
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
	ticket, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondTicketErr(w, "change ticket status", err)
		return
	}
	httpx.OK(w, ticket)
}

// Assign routes a ticket to an agent.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid ticket id", nil)
		return
	}
	var req AssignTicketRequest
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
	ticket, err := h.service.Assign(r.Context(), id, req.AssignedTo)
	if err != nil {
		h.respondTicketErr(w, "assign ticket", err)
		return
	}
	httpx.OK(w, ticket)
}

// ListComments returns the ticket's comment timeline.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid ticket id", nil)
		return
	}
	comments, err := h.service.Comments(r.Context(), id)
	if err != nil {
		h.respondTicketErr(w, "list ticket comments", err)
		return
	}
	httpx.OK(w, comments)
}

// AddComment appends a comment to the ticket.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "invalid ticket id", nil)
		return
	}
	var req AddCommentRequest
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
	comment, err := h.service.AddComment(r.Context(), id, principalID(r), req.Body)
	if err != nil {
		h.respondTicketErr(w, "add ticket comment", err)
		return
	}
	httpx.Created(w, comment)
}

func (h *Handler) respondTicketErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "ticket not found", nil)
	case errors.Is(err, ErrInvalidStatus):
		httpx.Fail(w, http.StatusConflict, err.Error(), nil)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to update ticket", nil)
	}
}
