package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
	dateLayout       = "2006-01-02"
)

// Handler exposes the audit timeline to administrators holding SETTINGS.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers the timeline and its CSV export.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)
	r.With(h.rbac.Require(rbac.ModuleSettings, rbac.ActionView)).Get("/", h.timeline)
	r.With(h.rbac.Require(rbac.ModuleSettings, rbac.ActionView), limiter).Get("/export.csv", h.export)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	body, err := h.service.ExportCSV(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

// ParseFilters reads timeline filters from the query string. from and to are
// calendar dates; to is inclusive.
func ParseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	var f TimelineFilters
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("%w: from must be YYYY-MM-DD", shared.ErrValidation)
		}
		f.From = from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("%w: to must be YYYY-MM-DD", shared.ErrValidation)
		}
		f.To = to.AddDate(0, 0, 1)
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return f, fmt.Errorf("%w: invalid page", shared.ErrValidation)
		}
		f.Page = page
	}
	if v := strings.TrimSpace(q.Get("pageSize")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return f, fmt.Errorf("%w: invalid pageSize", shared.ErrValidation)
		}
		f.PageSize = size
	}
	f.Actor = strings.TrimSpace(q.Get("actor"))
	f.Entity = strings.TrimSpace(q.Get("entity"))
	f.EntityID = strings.TrimSpace(q.Get("entityId"))
	f.Action = strings.TrimSpace(q.Get("action"))
	return f, nil
}

func rateLimitKey(r *http.Request) (string, error) {
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		return "user:" + actor.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
