package jobposts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// Handler exposes admin and portal job endpoints.
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
		r.Use(h.rbac.Require(rbac.ModuleJobs, rbac.ActionView))
		r.Get("/", h.list)
		r.Get("/{jobID}", h.get)
	})
	r.With(h.rbac.Require(rbac.ModuleJobs, rbac.ActionCreate)).Post("/", h.create)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleJobs, rbac.ActionEdit))
		r.Put("/{jobID}", h.update)
		r.Post("/{jobID}/archive", h.toggleArchive)
	})
	r.With(h.rbac.Require(rbac.ModuleJobs, rbac.ActionDelete)).Delete("/{jobID}", h.delete)
}

// MountPortal registers the public job listing.
func (h *Handler) MountPortal(r chi.Router) {
	r.Get("/jobs", h.portalList)
	r.Get("/jobs/{jobID}", h.portalGet)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		BranchID:        q.Get("branch"),
		Status:          Status(strings.ToUpper(q.Get("status"))),
		Search:          strings.TrimSpace(q.Get("search")),
		IncludeArchived: q.Get("archived") == "true",
	}
	posts, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list job posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": nonNil(posts)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	branch := ""
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		branch = actor.BranchID
	}
	post, err := h.service.Create(r.Context(), branch, in)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	post, err := h.service.Update(r.Context(), chi.URLParam(r, "jobID"), in)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) toggleArchive(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.ToggleArchive(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "jobID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) portalList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListOpen(r.Context())
	if err != nil {
		h.logger.Error("list portal jobs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"jobs": nonNil(posts)})
}

func (h *Handler) portalGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetOpen(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func nonNil(posts []JobPost) []JobPost {
	if posts == nil {
		return []JobPost{}
	}
	return posts
}
