package notifications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/rbac"
)

// Handler exposes notification endpoints to any signed-in administrator.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers the routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireActor())
		r.Get("/", h.list)
		r.Post("/read-all", h.markAll)
		r.Post("/{notificationID}/read", h.markRead)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.List(r.Context(), r.URL.Query().Get("unread") == "true", limit)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": items, "unread": unread})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		h.logger.Error("mark notifications read", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}
