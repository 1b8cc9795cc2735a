package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/protocolai/hireai/internal/applications"
	"github.com/protocolai/hireai/internal/audit"
	"github.com/protocolai/hireai/internal/auth"
	"github.com/protocolai/hireai/internal/branches"
	"github.com/protocolai/hireai/internal/jobposts"
	"github.com/protocolai/hireai/internal/notifications"
	"github.com/protocolai/hireai/internal/observability"
	"github.com/protocolai/hireai/internal/ranking"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/roles"
	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
	"github.com/protocolai/hireai/jobs"
)

// PortalPrefix is the public, session-optional part of the API.
const PortalPrefix = "/portal"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	CSRFManager         *shared.CSRFManager
	RBACMiddleware      rbac.Middleware
	AuthHandler         *auth.Handler
	RolesHandler        *roles.Handler
	UsersHandler        *users.Handler
	BranchesHandler     *branches.Handler
	JobPostsHandler     *jobposts.Handler
	ApplicationsHandler *applications.Handler
	NotificationHandler *notifications.Handler
	RankingHandler      *ranking.Handler
	AuditHandler        *audit.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with HireAI defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		CSRFExempt:     []string{PortalPrefix + "/"},
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route(PortalPrefix, func(r chi.Router) {
		if params.JobPostsHandler != nil {
			params.JobPostsHandler.MountPortal(r)
		}
		if params.ApplicationsHandler != nil {
			params.ApplicationsHandler.MountPortal(r)
		}
	})

	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/team", params.UsersHandler.MountRoutes)
	}
	if params.BranchesHandler != nil {
		r.Route("/branches", params.BranchesHandler.MountRoutes)
	}
	if params.JobPostsHandler != nil {
		r.Route("/jobs", params.JobPostsHandler.MountRoutes)
	}
	if params.ApplicationsHandler != nil {
		r.Route("/applications", params.ApplicationsHandler.MountRoutes)
	}
	if params.NotificationHandler != nil {
		r.Route("/notifications", params.NotificationHandler.MountRoutes)
	}
	if params.RankingHandler != nil {
		r.Route("/intelligence", params.RankingHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/ops/queue", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(rbac.ModuleSettings, rbac.ActionView))
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
