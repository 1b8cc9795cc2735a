package branches

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// Handler exposes branch endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers branch routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ModuleBranches, rbac.ActionView)).Get("/", h.list)
	r.With(h.rbac.Require(rbac.ModuleBranches, rbac.ActionView)).Get("/{branchID}", h.get)
	r.With(h.rbac.Require(rbac.ModuleBranches, rbac.ActionCreate)).Post("/", h.provision)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list branches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Branch{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"branches": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	branch, err := h.service.Get(r.Context(), chi.URLParam(r, "branchID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branch)
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	var in ProvisionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actorID := ""
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		actorID = actor.ID
	}
	out, err := h.service.Provision(r.Context(), actorID, in)
	if err != nil {
		h.logger.Warn("provision branch", slog.Any("error", err))
		httpx.RespondValidation(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusCreated, out)
}
