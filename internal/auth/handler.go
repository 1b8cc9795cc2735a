package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/protocolai/hireai/internal/i18n"
	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	access         *rbac.Service
	rbac           rbac.Middleware
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, access *rbac.Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		access:         access,
		rbac:           rbac.Middleware{Service: access, Logger: logger},
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.csrfToken)
	r.Get("/navigation", h.navigation)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.With(h.rbac.RequireActor()).Get("/me", h.me)
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrfManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	creds, err := h.service.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		h.logger.Warn("login rejected", slog.String("email", in.Email))
		httpx.RespondError(w, err)
		return
	}

	sess.Renew()
	sess.SetUser(creds.UserID)
	sess.Delete(shared.CSRFSessionKey)
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, creds.UserID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.logger.Info("admin signed in", slog.String("user_id", creds.UserID))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"userId":    creds.UserID,
		"email":     creds.Email,
		"fullName":  creds.FullName,
		"csrfToken": token,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		sess.ClearUser()
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	snap, ok := rbac.SnapshotFromContext(r.Context())
	if !ok || snap.Actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	profile := Profile{
		UserID:      snap.Actor.ID,
		Permissions: []rbac.ModulePermission{},
		Navigation:  snap.Navigation(i18n.FromContext(r.Context())),
	}
	if role, ok := snap.Role(); ok {
		profile.Role = &role
		profile.Permissions = rbac.NormalizePermissions(role.Permissions)
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		userID = sess.User()
	}
	snap, err := h.access.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Error("navigation snapshot", slog.Any("error", err))
		snap = rbac.Snapshot{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": snap.Navigation(i18n.FromContext(r.Context()))})
}
