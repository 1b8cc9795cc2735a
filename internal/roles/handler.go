package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// Handler manages role management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleRoles, rbac.ActionView))
		r.Get("/", h.listRoles)
		r.Get("/modules", h.listModules)
		r.Get("/{roleID}", h.getRole)
	})
	r.With(h.rbac.Require(rbac.ModuleRoles, rbac.ActionCreate)).Post("/", h.createRole)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ModuleRoles, rbac.ActionEdit))
		r.Put("/{roleID}", h.updateRole)
		r.Post("/{roleID}/permissions/toggle", h.togglePermission)
	})
	r.With(h.rbac.Require(rbac.ModuleRoles, rbac.ActionDelete)).Delete("/{roleID}", h.deleteRole)
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.fail(w, "list roles", err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": rbac.Catalogue()})
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.GetRole(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		h.fail(w, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var in RoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.CreateRole(r.Context(), actorID(r), in)
	if err != nil {
		h.fail(w, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var in RoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.UpdateRole(r.Context(), actorID(r), chi.URLParam(r, "roleID"), in)
	if err != nil {
		h.fail(w, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) togglePermission(w http.ResponseWriter, r *http.Request) {
	var change PermissionChange
	if err := httpx.DecodeJSON(r, &change); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.TogglePermission(r.Context(), actorID(r), chi.URLParam(r, "roleID"), change)
	if err != nil {
		h.fail(w, "toggle permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), actorID(r), chi.URLParam(r, "roleID")); err != nil {
		h.fail(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.FieldErrors(err) == nil && h.logger != nil {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondValidation(w, err)
}

func actorID(r *http.Request) string {
	if actor := rbac.ActorFromContext(r.Context()); actor != nil {
		return actor.ID
	}
	return ""
}
