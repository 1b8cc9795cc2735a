package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// Handler manages team endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ModuleTeam, rbac.ActionView)).Get("/", h.listUsers)
	r.With(h.rbac.Require(rbac.ModuleTeam, rbac.ActionCreate)).Post("/", h.createUser)
	r.With(h.rbac.Require(rbac.ModuleTeam, rbac.ActionEdit)).Put("/{userID}/role", h.assignRole)
	r.With(h.rbac.Require(rbac.ModuleTeam, rbac.ActionDelete)).Delete("/{userID}", h.deleteUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []AdminUser{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.CreateUser(r.Context(), currentActor(r), in)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	var in AssignRoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.AssignRole(r.Context(), currentActor(r), chi.URLParam(r, "userID"), in)
	if err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), currentActor(r), chi.URLParam(r, "userID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func currentActor(r *http.Request) string {
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		return actor.ID
	}
	return ""
}
