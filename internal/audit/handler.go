package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/helios-energy/helios-admin/internal/platform/httpx"
	"github.com/helios-energy/helios-admin/internal/rbac"
	"github.com/helios-energy/helios-admin/internal/shared"
)

// Handler exposes the audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit endpoints gated by the audit permission.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAny(shared.PermAuditRead))
		r.Get("/", h.Timeline)
		r.Get("/export", h.Export)
	})
}

func parseFilters(r *http.Request) TimelineFilters {
	q := r.URL.Query()
	f := TimelineFilters{
		Actor:  q.Get("actor"),
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}
	if v := q.Get("from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.From = ts
		}
	}
	if v := q.Get("to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			f.To = ts
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	return f
}

// Timeline returns one page of the audit trail.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Timeline(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load audit trail", nil)
		return
	}
	httpx.OK(w, result)
}

// Export streams the filtered timeline as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportCSV(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to export audit trail", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-trail.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
