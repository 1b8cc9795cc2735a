package applications

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// IdempotencyHeader carries the client-generated key of a public submission.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes application endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleCandidates, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{appID}", h.get)
	})
	r.With(h.rbac.Require(rbac.ModuleCandidates, rbac.ActionEdit)).Post("/{appID}/status", h.changeStatus)
	r.With(h.rbac.Require(rbac.ModuleCandidates, rbac.ActionDelete)).Post("/{appID}/archive", h.toggleArchive)
}

// MountPortal registers the public intake route.
func (h *Handler) MountPortal(r chi.Router) {
	r.Post("/jobs/{jobID}/applications", h.apply)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var in IntakeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	app, err := h.service.Apply(r.Context(), chi.URLParam(r, "jobID"), key, in)
	if err != nil {
		h.logger.Info("application rejected", slog.String("job_id", chi.URLParam(r, "jobID")), slog.Any("error", err))
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": app.ID, "status": app.Status, "appliedAt": app.AppliedAt})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))
	filters := ListFilters{
		JobID:           q.Get("job"),
		BranchID:        q.Get("branch"),
		Search:          strings.TrimSpace(q.Get("search")),
		IncludeArchived: q.Get("archived") == "true",
		Page:            page,
		PerPage:         perPage,
	}
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(strings.ToUpper(raw))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filters.Status = status
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list applications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var in StatusChange
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	app, err := h.service.ChangeStatus(r.Context(), actorID(r), chi.URLParam(r, "appID"), in)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func (h *Handler) toggleArchive(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.ToggleArchive(r.Context(), actorID(r), chi.URLParam(r, "appID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, app)
}

func actorID(r *http.Request) string {
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		return actor.ID
	}
	return ""
}
